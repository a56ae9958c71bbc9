package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"astro-relay/internal/app"
	"astro-relay/internal/cache"
	"astro-relay/internal/events"
	"astro-relay/internal/history"
	"astro-relay/internal/httputil"
	"astro-relay/internal/llm"
	"astro-relay/internal/metrics"
)

const (
	upstreamErrorMessage = "Error fetching response from Gemini API."
	defaultHistoryLimit  = 20
	publishAttempts      = 3
	publishBackoff       = 50 * time.Millisecond
	defaultRecordTimeout = 2 * time.Second
)

type askRequest struct {
	Question string `json:"question"`
}

type historyQuery struct {
	Limit int `validate:"min=1,max=100"`
}

// askHandler gates the question through the topic filter, serves cached
// answers, and otherwise relays the question to the upstream model.
func askHandler(deps app.Deps) http.HandlerFunc {
	model := app.UpstreamModel(deps.Config)
	offTopic := offTopicMessage(deps.Topic.Name())

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := deps.Log.With("request_id", middleware.GetReqID(ctx))

		req, err := decodeAsk(r.Body)
		if err != nil {
			httputil.Fail(log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		if !deps.Topic.Allows(req.Question) {
			recordOutcome(ctx, deps, log, history.Entry{Question: req.Question, Outcome: history.OutcomeRejected})
			httputil.Fail(log, w, offTopic, nil, http.StatusBadRequest)
			return
		}
		matched := deps.Topic.Matches(req.Question)

		key := cache.Key(model, req.Question)
		if answer, ok, err := deps.Cache.GetAnswer(ctx, key); err != nil {
			log.Warn("cache lookup failed", "err", err)
		} else if ok {
			recordOutcome(ctx, deps, log, history.Entry{
				Question: req.Question, Keywords: matched, Answer: answer, Outcome: history.OutcomeCached,
			})
			w.Header().Set("X-Cache", "HIT")
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
			return
		}

		start := time.Now()
		answer, err := deps.LLM.Answer(ctx, req.Question)
		observeUpstream(deps.Config.LLMProvider, err, time.Since(start))
		if err != nil {
			recordOutcome(ctx, deps, log, history.Entry{
				Question: req.Question, Keywords: matched, Outcome: history.OutcomeFailed,
			})
			httputil.Fail(log, w, upstreamErrorMessage, err, http.StatusInternalServerError)
			return
		}

		if answer != llm.FallbackAnswer {
			if err := deps.Cache.SetAnswer(ctx, key, answer, deps.Config.CacheTTL); err != nil {
				log.Warn("failed to cache answer", "err", err)
			}
		}
		recordOutcome(ctx, deps, log, history.Entry{
			Question: req.Question, Keywords: matched, Answer: answer, Outcome: history.OutcomeAnswered,
		})
		w.Header().Set("X-Cache", "MISS")
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
	}
}

// decodeAsk reads exactly one JSON value. An empty body means an empty
// question, which the filter rejects; trailing data is an error.
func decodeAsk(body io.Reader) (askRequest, error) {
	var req askRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return askRequest{}, nil
		}
		return askRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return askRequest{}, errors.New("unexpected data after JSON body")
	}
	return req, nil
}

func historyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := historyQuery{Limit: defaultHistoryLimit}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				httputil.Fail(deps.Log, w, "limit must be an integer", err, http.StatusBadRequest)
				return
			}
			q.Limit = n
		}
		if err := httputil.Validator.Struct(&q); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		entries, err := deps.History.Recent(r.Context(), q.Limit)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load history", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
	}
}

func welcomeHandler(deps app.Deps) http.HandlerFunc {
	body := map[string]any{
		"message": fmt.Sprintf("Welcome to the %s Q&A API", titleCase(deps.Topic.Name())),
		"endpoints": map[string]string{
			"POST /ask":    `Ask a question: {"question": "..."}`,
			"GET /health":  "Health check",
			"GET /history": "Recent questions (?limit=1..100)",
			"GET /metrics": "Prometheus metrics",
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}

// recordOutcome counts the outcome, then writes history and publishes an event.
// Failures are logged only; they never change the response.
func recordOutcome(ctx context.Context, deps app.Deps, log *slog.Logger, entry history.Entry) {
	metrics.AsksTotal.WithLabelValues(string(entry.Outcome)).Inc()

	// Outlive a client hang-up, but never stall the response on a slow backend.
	timeout := deps.Config.RecordTimeout
	if timeout <= 0 {
		timeout = defaultRecordTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := deps.History.Record(ctx, entry); err != nil {
		log.Warn("failed to record history", "err", err, "outcome", entry.Outcome)
	}

	ev := events.Event{
		Outcome:    string(entry.Outcome),
		Question:   entry.Question,
		Keywords:   entry.Keywords,
		AnswerSize: len(entry.Answer),
		RequestID:  middleware.GetReqID(ctx),
	}
	if err := events.PublishWithRetry(ctx, deps.Events, ev, publishAttempts, publishBackoff); err != nil {
		log.Warn("failed to publish event", "err", err, "outcome", entry.Outcome)
	}
}

func observeUpstream(provider string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.UpstreamDuration.WithLabelValues(provider, result).Observe(elapsed.Seconds())
}

func offTopicMessage(topic string) string {
	article := "a"
	if topic != "" && strings.ContainsRune("aeiouAEIOU", rune(topic[0])) {
		article = "an"
	}
	return fmt.Sprintf("Please ask %s %s-related question.", article, topic)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
