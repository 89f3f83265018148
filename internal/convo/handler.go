// Package convo runs the conversational quoting loop: extract fields from
// each incoming message, merge them into the session, and either ask for
// the next missing field or price the shipment once the set is complete.
package convo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/extract"
	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
	"github.com/stock-logistic/quoting-cli/internal/quote"
	"github.com/stock-logistic/quoting-cli/internal/store"
)

// historyWindow caps how many turns are forwarded to the assistant when
// rephrasing a prompt.
const historyWindow = 20

// maxPickupLeadDays bounds how far ahead a pickup may be booked.
const maxPickupLeadDays = 90

// maxWeightKg is the heaviest load a single trailer can legally carry.
const maxWeightKg = 24000

// Assistant optionally rewords the templated prompt into a more natural
// reply. Failures fall back to the template.
type Assistant interface {
	Reply(ctx context.Context, history []model.Turn, prompt string) (string, error)
}

// Reply is the outcome of one conversation turn.
type Reply struct {
	SessionID string             `json:"session_id"`
	Text      string             `json:"text"`
	Completed bool               `json:"completed"`
	Missing   []model.FieldKey   `json:"missing,omitempty"`
	Quote     *model.QuoteRecord `json:"quote,omitempty"`
}

// Handler processes conversation turns. Turns for the same session are
// serialized; distinct sessions proceed concurrently.
type Handler struct {
	store     store.Store
	engine    *pricing.Engine
	builder   *quote.Builder
	assistant Assistant

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAssistant wires an optional language-model collaborator for prompt
// rephrasing.
func WithAssistant(a Assistant) HandlerOption {
	return func(h *Handler) { h.assistant = a }
}

// NewHandler builds the turn handler.
func NewHandler(st store.Store, engine *pricing.Engine, builder *quote.Builder, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:   st,
		engine:  engine,
		builder: builder,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// sessionLock returns the mutex serializing turns for one session id.
func (h *Handler) sessionLock(id string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[id]
	if !ok {
		l = &sync.Mutex{}
		h.locks[id] = l
	}
	return l
}

// Message processes one user message for the given session, creating the
// session when the id is unknown or empty.
func (h *Handler) Message(ctx context.Context, sessionID, text string) (*Reply, error) {
	sess, err := h.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lock := h.sessionLock(sess.ID)
	lock.Lock()
	defer lock.Unlock()

	firstTurn := len(sess.History) == 0
	lastQuestion := sess.LastAssistantText()
	sess.AppendTurn(model.RoleUser, text)

	extracted := extract.Extract(text, lastQuestion)
	clean, warnings := validate(extracted)
	sess.MergeFields(clean)

	zap.L().Debug("turn processed",
		zap.String("session_id", sess.ID),
		zap.Int("extracted", len(extracted)),
		zap.Int("merged", len(clean)),
		zap.Strings("warnings", warnings))

	if !sess.Fields.IsComplete() {
		return h.ask(ctx, sess, warnings, firstTurn)
	}
	return h.complete(ctx, sess)
}

// Resume returns the current state of a session without processing a
// message.
func (h *Handler) Resume(ctx context.Context, sessionID string) (*Reply, error) {
	sess, err := h.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Reply{
		SessionID: sess.ID,
		Text:      sess.LastAssistantText(),
		Completed: sess.Status == model.StatusCompleted,
		Missing:   sess.Fields.Missing(),
	}, nil
}

func (h *Handler) getOrCreate(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID != "" {
		sess, err := h.store.GetSession(ctx, sessionID)
		if err == nil {
			return sess, nil
		}
		if !eris.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	return h.store.CreateSession(ctx, sessionID)
}

func (h *Handler) ask(ctx context.Context, sess *model.Session, warnings []string, firstTurn bool) (*Reply, error) {
	text := AskText(sess.Fields, warnings, firstTurn)
	if h.assistant != nil {
		if reworded, err := h.assistant.Reply(ctx, tail(sess.History, historyWindow), text); err == nil && reworded != "" {
			text = reworded
		} else if err != nil {
			zap.L().Debug("assistant rephrase failed, using template", zap.Error(err))
		}
	}

	sess.AppendTurn(model.RoleAssistant, text)
	if err := h.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return &Reply{
		SessionID: sess.ID,
		Text:      text,
		Missing:   sess.Fields.Missing(),
	}, nil
}

func (h *Handler) complete(ctx context.Context, sess *model.Session) (*Reply, error) {
	sess.Status = model.StatusQuoting

	req := pricing.Request{
		Origin:       sess.Fields.String(model.FieldOrigin),
		Destination:  sess.Fields.String(model.FieldDestination),
		WeightKg:     sess.Fields.Float(model.FieldWeightKg),
		VolumeM3:     sess.Fields.Float(model.FieldVolumeM3),
		CargoType:    sess.Fields.String(model.FieldCargoType),
		ServiceType:  model.ServiceTier(sess.Fields.String(model.FieldServiceType)),
		PickupDate:   sess.Fields.String(model.FieldPickupDate),
		ProfitMargin: sess.Fields.Float(model.FieldProfitMargin),
	}
	res, err := h.engine.Quote(ctx, req)
	if err != nil {
		sess.Status = model.StatusError
		if saveErr := h.store.SaveSession(ctx, sess); saveErr != nil {
			zap.L().Warn("save errored session", zap.Error(saveErr))
		}
		return nil, eris.Wrapf(err, "convo: price session %s", sess.ID)
	}

	rec := h.builder.Build(sess.ID, req, res)
	if err := h.store.SaveQuote(ctx, rec); err != nil {
		return nil, err
	}

	text := SummaryText(rec)
	sess.Status = model.StatusCompleted
	sess.QuoteID = rec.QuoteID
	sess.AppendTurn(model.RoleAssistant, text)
	if err := h.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	zap.L().Info("quote generated",
		zap.String("session_id", sess.ID),
		zap.String("quote_id", rec.QuoteID),
		zap.Float64("total", rec.Costs.Total))

	return &Reply{
		SessionID: sess.ID,
		Text:      text,
		Completed: true,
		Quote:     rec,
	}, nil
}

// validate drops implausible extracted values, turning each into a Spanish
// warning so the caller is re-asked instead of quoted nonsense.
func validate(fields model.FieldSet) (model.FieldSet, []string) {
	clean := model.FieldSet{}
	clean.Merge(fields)
	var warnings []string

	if fields.Has(model.FieldWeightKg) {
		w := fields.Float(model.FieldWeightKg)
		if w <= 0 || w > maxWeightKg {
			delete(clean, model.FieldWeightKg)
			warnings = append(warnings,
				fmt.Sprintf("El peso debe estar entre 1 y %d kg.", maxWeightKg))
		}
	}

	if fields.Has(model.FieldPickupDate) {
		d, err := time.Parse("2006-01-02", fields.String(model.FieldPickupDate))
		today := time.Now().UTC().Truncate(24 * time.Hour)
		switch {
		case err != nil:
			delete(clean, model.FieldPickupDate)
			warnings = append(warnings, "No he podido interpretar la fecha de recogida.")
		case d.Before(today):
			delete(clean, model.FieldPickupDate)
			warnings = append(warnings, "La fecha de recogida no puede estar en el pasado.")
		case d.After(today.AddDate(0, 0, maxPickupLeadDays)):
			delete(clean, model.FieldPickupDate)
			warnings = append(warnings,
				fmt.Sprintf("La fecha de recogida no puede superar los %d días.", maxPickupLeadDays))
		}
	}

	return clean, warnings
}

func tail(turns []model.Turn, n int) []model.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
