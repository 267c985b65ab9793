package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"phone-order-be/internal/dto"
	"phone-order-be/internal/metrics"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/tracer"
	"phone-order-be/pkg/menu"
	"phone-order-be/pkg/nlu"
	"phone-order-be/pkg/ordering/extras"
	"phone-order-be/pkg/ordering/merge"
	"phone-order-be/pkg/ordering/policy"
	"phone-order-be/pkg/ordering/session"
	"phone-order-be/pkg/store"
	"phone-order-be/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type IOrderAgentService interface {
	HandleTurn(ctx context.Context, req dto.TurnRequest) (*dto.TurnResponse, error)
	EndCall(ctx context.Context, callID string) error
}

// AgentOptions tunes the dialogue loop.
type AgentOptions struct {
	// ReplayWindow bounds how long an identical utterance without a delivery
	// key counts as a redelivery.
	ReplayWindow time.Duration
	HistoryLimit int
}

type orderAgentService struct {
	sessions  *session.Manager
	catalog   *menu.Catalog
	extractor nlu.Extractor
	merger    *merge.Merger
	policy    *policy.Policy
	sink      OrderSink
	opts      AgentOptions
	logger    logger.ILogger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewOrderAgentService(
	sessions *session.Manager,
	catalog *menu.Catalog,
	extractor nlu.Extractor,
	pol *policy.Policy,
	sink OrderSink,
	opts AgentOptions,
	log logger.ILogger,
) IOrderAgentService {
	return &orderAgentService{
		sessions:  sessions,
		catalog:   catalog,
		extractor: extractor,
		merger:    merge.NewMerger(catalog),
		policy:    pol,
		sink:      sink,
		opts:      opts,
		logger:    log,
		tracer:    tracer.Tracer("order-agent"),
		now:       time.Now,
	}
}

// turn carries what one HandleTurn call learns on its way through.
type turn struct {
	utterance   string
	start       bool
	deliveryKey string
}

// HandleTurn runs one caller utterance through the dialogue. An empty
// utterance, or "start", opens the call. Errors leave the stored session
// untouched; callers answer them with the fallback utterance.
func (s *orderAgentService) HandleTurn(ctx context.Context, req dto.TurnRequest) (*dto.TurnResponse, error) {
	began := s.now()
	ctx, span := s.tracer.Start(ctx, "OrderAgent.HandleTurn", trace.WithAttributes(attribute.String("call.id", req.CallID)))
	defer span.End()

	res, outcome, err := s.handleTurn(ctx, req)
	metrics.RecordTurn(outcome, s.now().Sub(began).Seconds())
	span.SetAttributes(attribute.String("turn.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("dialogue.state", res.State))
	return res, nil
}

func (s *orderAgentService) handleTurn(ctx context.Context, req dto.TurnRequest) (*dto.TurnResponse, string, error) {
	lease, err := s.sessions.Acquire(ctx, req.CallID)
	if err != nil {
		if errors.Is(err, session.ErrSessionBusy) {
			s.logger.Warn("OrderAgent", "Turn gave up waiting for the call", map[string]interface{}{"call_id": req.CallID})
			return nil, metrics.OutcomeBusy, err
		}
		s.logger.Error("OrderAgent", "Failed to load session", map[string]interface{}{"call_id": req.CallID, "error": err.Error()})
		return nil, metrics.OutcomeError, err
	}
	defer lease.Release()
	sess := lease.Session
	now := s.now()

	t := s.readTurn(req)

	if s.isReplay(sess, t, now) {
		s.logger.Info("OrderAgent", "Redelivered utterance, repeating last reply", map[string]interface{}{"call_id": sess.CallID})
		return &dto.TurnResponse{
			Reply:             sess.LastReply,
			ContinueListening: sess.LastContinue,
			Discardable:       sess.Placed && !sess.LastContinue,
			State:             sess.State.String(),
		}, metrics.OutcomeReplay, nil
	}

	var (
		reply       string
		keepOpen    = true
		discardable bool
		outcome     = metrics.OutcomeOK
	)

	if sess.Placed {
		reply, keepOpen, discardable, outcome = s.policy.Farewell(sess), false, true, metrics.OutcomeFinished
	} else {
		reply, keepOpen = s.converse(ctx, sess, t)
		if !keepOpen {
			discardable, outcome = true, metrics.OutcomeFinished
		}
	}

	if !t.start {
		sess.AppendHistory(store.RoleCaller, t.utterance, s.opts.HistoryLimit)
	}
	sess.AppendHistory(store.RoleAgent, reply, s.opts.HistoryLimit)
	sess.LastDeliveryKey = t.deliveryKey
	sess.LastDeliveryAt = now
	sess.LastReply = reply
	sess.LastContinue = keepOpen

	if err := lease.Save(ctx); err != nil {
		s.logger.Error("OrderAgent", "Failed to save session", map[string]interface{}{"call_id": sess.CallID, "error": err.Error()})
		return nil, metrics.OutcomeError, err
	}

	return &dto.TurnResponse{
		Reply:             reply,
		ContinueListening: keepOpen,
		Discardable:       discardable,
		State:             sess.State.String(),
	}, outcome, nil
}

func (s *orderAgentService) readTurn(req dto.TurnRequest) turn {
	t := turn{utterance: strings.TrimSpace(req.Utterance)}
	folded := utils.Fold(t.utterance)
	t.start = folded == "" || folded == "start"

	switch {
	case req.DeliveryKey != "":
		t.deliveryKey = "key:" + req.DeliveryKey
	case req.TextReplay && !t.start:
		t.deliveryKey = "text:" + folded
	}
	return t
}

// isReplay reports whether the turn is a redelivery of the previous one.
// Explicit delivery keys match for the life of the call, utterance text only
// inside the replay window.
func (s *orderAgentService) isReplay(sess *store.Session, t turn, now time.Time) bool {
	if t.deliveryKey == "" || sess.LastReply == "" || t.deliveryKey != sess.LastDeliveryKey {
		return false
	}
	if strings.HasPrefix(t.deliveryKey, "key:") {
		return true
	}
	return now.Sub(sess.LastDeliveryAt) <= s.opts.ReplayWindow
}

// converse does the extraction, merge and policy steps of a turn and returns
// the reply and whether to keep listening.
func (s *orderAgentService) converse(ctx context.Context, sess *store.Session, t turn) (string, bool) {
	awaiting := sess.AwaitingConfirmation
	sess.AwaitingConfirmation = false

	var parse *merge.ParseResult
	var opts []merge.Option
	if !t.start {
		if s.answerClarification(sess, t.utterance) {
			opts = append(opts, merge.WithoutLooseExtras())
		}
		parse = s.extract(ctx, sess, t.utterance)

		if !awaiting && sess.Pending == nil && s.askingForExtras(sess) && extras.IsDecline(t.utterance) {
			if parse == nil {
				parse = &merge.ParseResult{}
			}
			parse.NoExtras = true
		}
	}

	out := s.merger.Apply(sess, parse, opts...)
	if out.Clarification {
		metrics.ClarificationsTotal.Inc()
	}
	if len(out.DroppedItems) > 0 || len(out.DroppedExtras) > 0 {
		s.logger.Debug("OrderAgent", "Dropped mentions outside the menu", map[string]interface{}{
			"call_id": sess.CallID,
			"items":   out.DroppedItems,
			"extras":  out.DroppedExtras,
		})
	}

	prompt := s.policy.Next(sess)

	if awaiting && !t.start && out.LinesAdded == 0 && !out.Clarification {
		switch s.confirmation(parse, t.utterance) {
		case nlu.ConfirmYes:
			if prompt.Kind == policy.KindSummary {
				s.placeOrder(ctx, sess, prompt)
				return s.policy.Farewell(sess), false
			}
		case nlu.ConfirmNo:
			if !out.Changed() {
				return s.policy.Amend(), true
			}
		}
	}

	sess.AwaitingConfirmation = prompt.Kind == policy.KindSummary
	return prompt.Text, true
}

// answerClarification resolves the pending clarification from the caller's
// words. The clarification stays open when the answer picks no single
// option.
func (s *orderAgentService) answerClarification(sess *store.Session, utterance string) bool {
	pending := sess.Pending
	if pending == nil {
		return false
	}
	if len(pending.Covers(len(sess.Lines))) == 0 {
		sess.Pending = nil
		return false
	}
	extra, ok := extras.ApplyAnswer(*pending, utterance)
	if !ok {
		return false
	}
	merge.ResolvePending(sess, extra)
	return true
}

func (s *orderAgentService) extract(ctx context.Context, sess *store.Session, utterance string) *merge.ParseResult {
	parse, err := s.extractor.Extract(ctx, utterance, s.catalog.Summary(), sess.History)
	if err != nil {
		metrics.ExtractionFailuresTotal.Inc()
		s.logger.Warn("OrderAgent", "Extraction failed, keeping session as is", map[string]interface{}{
			"call_id": sess.CallID,
			"error":   err.Error(),
		})
		return nil
	}
	return parse
}

// askingForExtras reports whether the caller is answering an extras question.
func (s *orderAgentService) askingForExtras(sess *store.Session) bool {
	if sess.State < store.StateExtras {
		return false
	}
	idx := sess.ActiveLine
	if idx < 0 || idx >= len(sess.Lines) {
		return false
	}
	return !sess.Lines[idx].ExtrasResolved
}

func (s *orderAgentService) confirmation(parse *merge.ParseResult, utterance string) string {
	if parse != nil && parse.Confirmation != "" {
		return parse.Confirmation
	}
	return nlu.DetectConfirmation(utterance)
}

// placeOrder hands the order to the sink once per call. A sink failure is
// logged; the caller still hears the farewell.
func (s *orderAgentService) placeOrder(ctx context.Context, sess *store.Session, prompt policy.Prompt) {
	if sess.Placed {
		return
	}
	id := uuid.New()
	sess.Confirmed = true
	sess.Placed = true
	sess.OrderID = id.String()

	order := FinalizedOrder{
		OrderID:         id,
		CallID:          sess.CallID,
		Mode:            sess.Mode,
		CustomerName:    sess.CustomerName,
		CustomerPhone:   sess.CustomerPhone,
		CustomerAddress: sess.CustomerAddress,
		Breakdown:       *prompt.Summary,
		Summary:         s.policy.SummaryText(sess, *prompt.Summary),
		PlacedAt:        s.now(),
	}
	metrics.RecordOrderPlaced(sess.Mode)

	if err := s.sink.Persist(ctx, order); err != nil {
		metrics.PersistFailuresTotal.Inc()
		s.logger.Error("OrderAgent", "Failed to persist placed order", map[string]interface{}{
			"call_id":  sess.CallID,
			"order_id": sess.OrderID,
			"error":    err.Error(),
		})
		return
	}
	s.logger.Info("OrderAgent", "Order placed", map[string]interface{}{
		"call_id":  sess.CallID,
		"order_id": sess.OrderID,
		"total":    order.Breakdown.Total.String(),
	})
}

// EndCall forgets a finished call.
func (s *orderAgentService) EndCall(ctx context.Context, callID string) error {
	if err := s.sessions.End(ctx, callID); err != nil {
		return err
	}
	s.logger.Info("OrderAgent", "Call session discarded", map[string]interface{}{"call_id": callID})
	return nil
}
