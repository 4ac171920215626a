package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	aiudexotel "github.com/aiudex/aiudexd/internal/adapter/otel"
	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/document"
	"github.com/aiudex/aiudexd/internal/domain/dossier"
	"github.com/aiudex/aiudexd/internal/port/credits"
	"github.com/aiudex/aiudexd/internal/port/database"
	"github.com/aiudex/aiudexd/internal/port/llm"
	"github.com/aiudex/aiudexd/internal/port/messagequeue"
	"github.com/aiudex/aiudexd/internal/port/notifier"
)

const generationTracer = "aiudexd/generation"

// Generation progress stages, broadcast in strict order. Each stage's work
// is conditioned on the previous stage's success; no reordering.
const (
	StagePreparing  = "preparando"
	StageCollecting = "coletando_dados"
	StageAnalyzing  = "analisando_caso"
	StageGenerating = "gerando_peca"
	StageCrediting  = "consumindo_credito"
	StageFormatting = "formatando"
	StageSaving     = "salvando"
	StageDone       = "concluido"
)

// ProgressSink receives staged progress updates during generation.
// A nil sink is valid and means no progress reporting.
type ProgressSink func(ctx context.Context, stage string, percent int)

// GenerationRequest is the input of one document-generation invocation.
type GenerationRequest struct {
	Dossier dossier.Dossier `json:"dossier"`
	Model   string          `json:"model"`
	Title   string          `json:"title"`
}

// GenerationService orchestrates the document assembly pipeline:
// validate → check credit → office identity → build prompt → LLM call →
// consume credit → format → persist → notify.
type GenerationService struct {
	store        database.Store
	ledger       credits.Ledger
	clients      map[string]llm.Client
	defaultModel string
	builder      *PromptBuilder
	formatter    *Formatter
	office       *OfficeService
	queue        messagequeue.Queue
	notify       *NotificationService
	progress     ProgressSink
	metrics      *aiudexotel.Metrics
}

// SetMetrics attaches metric instruments. A nil receiver field disables
// metric recording.
func (s *GenerationService) SetMetrics(m *aiudexotel.Metrics) {
	s.metrics = m
}

// NewGenerationService creates a GenerationService. clients maps provider
// names to LLM adapters; the provider is picked from the model id prefix.
func NewGenerationService(
	store database.Store,
	ledger credits.Ledger,
	clients map[string]llm.Client,
	defaultModel string,
	office *OfficeService,
	queue messagequeue.Queue,
	notify *NotificationService,
	progress ProgressSink,
) *GenerationService {
	return &GenerationService{
		store:        store,
		ledger:       ledger,
		clients:      clients,
		defaultModel: defaultModel,
		builder:      NewPromptBuilder(),
		formatter:    NewFormatter(),
		office:       office,
		queue:        queue,
		notify:       notify,
		progress:     progress,
	}
}

// Generate runs the full pipeline for one dossier. On missing mandatory
// fields it aborts with ErrValidation before any credit is consumed or LLM
// call made. A failed credit consumption or auto-save after a successful
// LLM call is logged but the generated document is still returned.
func (s *GenerationService) Generate(ctx context.Context, req GenerationRequest) (*document.Document, error) {
	ctx, span := otel.Tracer(generationTracer).Start(ctx, "document.generate")
	defer span.End()
	started := time.Now()

	s.report(ctx, StagePreparing, 5)

	// Hard local validation, independent of the prompt's embedded checklist.
	d := &req.Dossier
	if missing := d.MissingFields(); len(missing) > 0 {
		s.reset(ctx)
		msg := "campos obrigatórios ausentes: " + strings.Join(missing, ", ")
		s.notifyError(ctx, "Erro ao gerar peça com IA", msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	}
	if !d.HasAutor() {
		s.reset(ctx)
		msg := "nenhuma parte designada como autor"
		s.notifyError(ctx, "Erro ao gerar peça com IA", msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	}

	ok, err := s.ledger.CanGeneratePetition(ctx)
	if err != nil {
		s.reset(ctx)
		return nil, fmt.Errorf("check petition credits: %w", err)
	}
	if !ok {
		s.reset(ctx)
		s.notifyError(ctx, "Créditos insuficientes", "adquira mais créditos para gerar peças")
		return nil, domain.ErrNoCredits
	}

	s.report(ctx, StageCollecting, 15)
	office, err := s.office.Get(ctx)
	if err != nil {
		s.reset(ctx)
		return nil, fmt.Errorf("office identity: %w", err)
	}

	s.report(ctx, StageAnalyzing, 30)
	prompt := s.builder.Build(d, office)

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	client, err := s.clientFor(model)
	if err != nil {
		s.reset(ctx)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("llm.model", model),
		attribute.String("llm.provider", client.Name()),
		attribute.String("document.type", d.DocumentType),
	)

	s.report(ctx, StageGenerating, 45)
	text, err := client.Ask(ctx, model, prompt)
	if err != nil {
		span.SetStatus(codes.Error, "llm call failed")
		if s.metrics != nil {
			s.metrics.GenerationFailures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("llm.provider", client.Name()),
			))
		}
		s.reset(ctx)
		s.notifyError(ctx, "Erro ao gerar peça com IA", "tente novamente em instantes")
		return nil, fmt.Errorf("llm %s: %w", client.Name(), err)
	}

	// The document exists from here on: later failures degrade, not abort.
	s.report(ctx, StageCrediting, 70)
	if consumed, err := s.ledger.Consume(ctx, "Geração de peça: "+d.DocumentType); err != nil {
		slog.Error("credit consumption failed", "error", err)
	} else if !consumed {
		slog.Warn("credit consumption returned false after generation", "document_type", d.DocumentType)
	}

	s.report(ctx, StageFormatting, 80)
	html := s.formatter.Format(text)

	now := time.Now()
	doc := &document.Document{
		ID:           uuid.NewString(),
		Title:        s.titleFor(req),
		Area:         d.Area,
		DocumentType: d.DocumentType,
		Client:       s.clientName(d),
		RawText:      text,
		HTML:         html,
		Model:        model,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.report(ctx, StageSaving, 90)
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		// Generation success is not contingent on save success.
		slog.Error("auto-save failed", "document_id", doc.ID, "error", err)
		s.notifyError(ctx, "Erro ao salvar documento automaticamente", "o texto gerado permanece disponível")
		return doc, nil
	}

	s.publishGenerated(ctx, doc)
	if s.metrics != nil {
		attrs := metric.WithAttributes(
			attribute.String("llm.provider", client.Name()),
			attribute.String("document.type", d.DocumentType),
		)
		s.metrics.DocumentsGenerated.Add(ctx, 1, attrs)
		s.metrics.GenerationDuration.Record(ctx, time.Since(started).Seconds(), attrs)
	}
	s.report(ctx, StageDone, 100)
	s.notify.Notify(ctx, notifier.Notification{
		Title:   "Peça gerada com sucesso",
		Message: doc.Title,
		Level:   "success",
		Source:  "document.generated",
	})
	return doc, nil
}

// clientFor routes a model id to its provider adapter by prefix.
func (s *GenerationService) clientFor(model string) (llm.Client, error) {
	for name, client := range s.clients {
		if strings.HasPrefix(model, name) {
			return client, nil
		}
	}
	return nil, fmt.Errorf("%w: nenhum provedor para o modelo %q", domain.ErrValidation, model)
}

func (s *GenerationService) titleFor(req GenerationRequest) string {
	if req.Title != "" {
		return req.Title
	}
	return strings.TrimSpace(req.Dossier.DocumentType + " - " + s.clientName(&req.Dossier))
}

func (s *GenerationService) clientName(d *dossier.Dossier) string {
	for i := range d.Parties {
		if d.Parties[i].Polo == dossier.PoloAutor {
			return d.Parties[i].Name
		}
	}
	return ""
}

func (s *GenerationService) report(ctx context.Context, stage string, percent int) {
	if s.progress != nil {
		s.progress(ctx, stage, percent)
	}
}

// reset zeroes the progress indicator after a failure.
func (s *GenerationService) reset(ctx context.Context) {
	if s.progress != nil {
		s.progress(ctx, StagePreparing, 0)
	}
}

func (s *GenerationService) notifyError(ctx context.Context, title, msg string) {
	s.notify.Notify(ctx, notifier.Notification{
		Title:   title,
		Message: msg,
		Level:   "error",
		Source:  "document.generation",
	})
}

func (s *GenerationService) publishGenerated(ctx context.Context, doc *document.Document) {
	if s.queue == nil {
		return
	}
	payload := map[string]string{
		"id":            doc.ID,
		"title":         doc.Title,
		"document_type": doc.DocumentType,
		"model":         doc.Model,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal document event", "error", err)
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectDocumentGenerated, data); err != nil {
		slog.Error("failed to publish document event", "document_id", doc.ID, "error", err)
	}
}
