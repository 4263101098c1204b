package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
}

// force the timezone to São Paulo because the portal renders every
// timestamp as local wall-clock text, and servers running in other
// regions would otherwise shift dates when formatting the export.
func Now() time.Time {
	return time.Now().In(Location)
}
