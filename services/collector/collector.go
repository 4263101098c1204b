package collector

import (
	"context"
	"fmt"
	"log/slog"
	"poloscraper/lib/scrapers/polo"
	"poloscraper/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/collector")

// processing methods, stamped into every record
const (
	MethodComplete  = "COMPLETO"
	MethodFinancial = "FINANCEIRO"
)

// Record is one student's reconciled data.
type Record struct {
	CPF    string
	Fields polo.FieldMap
	Method string
}

// PortalClient is what a run needs from the portal: authentication and
// the three page fetches. polo.Client satisfies it.
type PortalClient interface {
	Login(ctx context.Context, username, password string) error
	FichaAcademica(ctx context.Context, cpf string) (string, error)
	Historico(ctx context.Context, cpf string) (string, error)
	FichaFinanceira(ctx context.Context, cpf string) (string, error)
}

type Credentials struct {
	Username string
	Password string
}

// Runner processes a batch of identifiers sequentially over a single
// authenticated session. The portal terminates concurrent sessions for
// the same operator account, so there is exactly one of everything: one
// session, one run, one record at a time.
type Runner struct {
	client PortalClient
	creds  Credentials
	log    *slog.Logger
}

func NewRunner(client PortalClient, creds Credentials) *Runner {
	return &Runner{
		client: client,
		creds:  creds,
		log:    slog.Default(),
	}
}

func (r *Runner) login(ctx context.Context) error {
	if err := r.client.Login(ctx, r.creds.Username, r.creds.Password); err != nil {
		r.log.ErrorContext(ctx, "login failed", "err", err)
		return fmt.Errorf("aborting batch: %w", err)
	}
	return nil
}

// RunFull walks every identifier through the ficha acadêmica, the
// histórico and the ficha financeira, reconciling the three into one
// record. An identifier whose ficha yields no name is skipped outright;
// failures on the later pages only cost the fields those pages would
// have contributed.
func (r *Runner) RunFull(ctx context.Context, identifiers []string) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "collector:RunFull", trace.WithAttributes(
		attribute.Int("identifiers", len(identifiers)),
	))
	defer span.End()

	if err := r.login(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return nil, err
	}

	var records []Record
	for _, identifier := range identifiers {
		cpf := textutil.Digits(identifier)
		if cpf == "" {
			r.log.WarnContext(ctx, "skipping blank identifier", "raw", identifier)
			continue
		}
		log := r.log.With("cpf", cpf)

		markup, err := r.client.FichaAcademica(ctx, cpf)
		if err != nil {
			log.WarnContext(ctx, "skipping: ficha unavailable", "err", err)
			continue
		}
		ficha := polo.ParseFicha(markup)
		if textutil.NormalizeName(ficha.Get(polo.FieldName)) == "" {
			log.WarnContext(ctx, "skipping: ficha has no student name")
			continue
		}

		historico := polo.FieldMap{}
		if markup, err := r.client.Historico(ctx, cpf); err != nil {
			log.WarnContext(ctx, "historico unavailable, record will be partial", "err", err)
		} else {
			historico = polo.ParseHistorico(markup)
		}

		financeiro := polo.FieldMap{}
		if markup, err := r.client.FichaFinanceira(ctx, cpf); err != nil {
			log.WarnContext(ctx, "ficha financeira unavailable, record will be partial", "err", err)
		} else {
			financeiro = polo.ParseFinanceiro(markup)
		}

		fields := Finalize(Merge(ficha, historico, financeiro), cpf, MethodComplete)
		records = append(records, Record{CPF: cpf, Fields: fields, Method: MethodComplete})
		log.InfoContext(ctx, "record collected", "fields", len(fields))
	}

	r.log.InfoContext(ctx, "batch finished",
		"requested", len(identifiers),
		"collected", len(records))
	return records, nil
}

// RunFinancial only visits the ficha financeira. Unlike the full run it
// emits a record for every identifier, failed fetches included, so the
// export keeps one row per requested student.
func (r *Runner) RunFinancial(ctx context.Context, identifiers []string) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "collector:RunFinancial", trace.WithAttributes(
		attribute.Int("identifiers", len(identifiers)),
	))
	defer span.End()

	if err := r.login(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return nil, err
	}

	var records []Record
	for _, identifier := range identifiers {
		cpf := textutil.Digits(identifier)
		if cpf == "" {
			r.log.WarnContext(ctx, "skipping blank identifier", "raw", identifier)
			continue
		}
		log := r.log.With("cpf", cpf)

		financeiro := polo.FieldMap{}
		if markup, err := r.client.FichaFinanceira(ctx, cpf); err != nil {
			log.WarnContext(ctx, "ficha financeira unavailable", "err", err)
		} else {
			financeiro = polo.ParseFinanceiro(markup)
		}

		fields := Finalize(Merge(financeiro), cpf, MethodFinancial)
		records = append(records, Record{CPF: cpf, Fields: fields, Method: MethodFinancial})
	}

	r.log.InfoContext(ctx, "batch finished",
		"requested", len(identifiers),
		"collected", len(records))
	return records, nil
}
