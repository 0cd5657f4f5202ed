package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"provider-balancer/balancer/pkg/auth"
	"provider-balancer/balancer/pkg/broadcaster"
	"provider-balancer/balancer/pkg/dedup"
	"provider-balancer/balancer/pkg/providers"
	"provider-balancer/balancer/pkg/routing"
	"provider-balancer/balancer/pkg/telemetry/metrics"
	"provider-balancer/balancer/pkg/translate"
)

// Orchestrator is the Request Orchestrator (§4.8): it owns the
// dedupe -> select -> attempt -> classify -> failover state machine for
// both non-streaming and streaming requests.
type Orchestrator struct {
	registry *providers.Registry
	tracker  *providers.Tracker
	selector *routing.Selector
	sticky   *routing.StickyState
	dedupIdx *dedup.Index
	authRes  *auth.Resolver
	clients  *clientPool
	settings Settings
	metrics  *metrics.Collector
}

// New builds an Orchestrator from its collaborators. metricsCollector may be
// nil in tests that don't care about Prometheus output; recordDedupAdmission,
// recordAttempt and addBroadcasterSubscriber return early when it is nil.
func New(registry *providers.Registry, tracker *providers.Tracker, selector *routing.Selector, sticky *routing.StickyState, dedupIdx *dedup.Index, authRes *auth.Resolver, settings Settings, metricsCollector *metrics.Collector) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		tracker:  tracker,
		selector: selector,
		sticky:   sticky,
		dedupIdx: dedupIdx,
		authRes:  authRes,
		clients:  newClientPool(),
		settings: settings,
		metrics:  metricsCollector,
	}
}

// recordDedupAdmission reports an Admit outcome and the Index's current
// size to the metrics Collector. No-op if the orchestrator was built
// without one.
func (o *Orchestrator) recordDedupAdmission(role dedup.Role) {
	if o.metrics == nil {
		return
	}
	var label string
	switch role {
	case dedup.RolePrimary:
		label = "primary"
	case dedup.RoleSubscriberNonStreaming:
		label = "subscriber_non_streaming"
	case dedup.RoleSubscriberStreaming:
		label = "subscriber_streaming"
	default:
		label = "unknown"
	}
	o.metrics.RecordDedupAdmission(label)
	o.metrics.SetDedupInflightEntries(o.dedupIdx.Size())
}

// recordAttempt reports a single provider attempt's outcome and, on
// failure, its error classification. Called right alongside the existing
// Tracker.RecordSuccess/RecordError calls so the two stay in lockstep.
func (o *Orchestrator) recordAttempt(provider, model string, started time.Time, err error, kind providers.ErrorKind) {
	if o.metrics == nil {
		return
	}
	duration := time.Since(started)
	status := "success"
	if err != nil {
		status = "error"
		o.metrics.RecordProviderError(provider, string(kind))
	}
	o.metrics.RecordRequest(provider, model, status, duration, 0)
	o.metrics.RecordProviderLatency(provider, model, duration.Seconds())
	o.metrics.UpdateProviderHealth(provider, o.tracker.IsHealthy(provider))
}

// addBroadcasterSubscriber adjusts the live broadcaster-subscriber gauge by
// delta (+1 on Subscribe, -1 on Unsubscribe).
func (o *Orchestrator) addBroadcasterSubscriber(delta int) {
	if o.metrics == nil {
		return
	}
	o.metrics.AddBroadcasterSubscribers(delta)
}

// DuplicateProviderLabel is the x-provider-used value reported to
// duplicate-subscribed streaming clients (§6).
const DuplicateProviderLabel = "broadcaster-duplicate"

// NonStreamResult is the outcome of a non-streaming request.
type NonStreamResult struct {
	Body         []byte
	StatusCode   int
	ProviderUsed string
	Duplicate    bool
}

// StreamResult is the outcome of admitting a streaming request: either a
// fresh subscription to a Primary's Broadcaster, or a subscription to an
// already in-flight one.
type StreamResult struct {
	ProviderUsed string
	Duplicate    bool
	Sub          *StreamSubscription
}

// StreamSubscription adapts one Broadcaster subscription for the HTTP
// layer: a channel of ordered chunks plus the terminal state observed at
// subscribe time.
type StreamSubscription struct {
	Chunks      <-chan []byte
	Terminal    broadcaster.TerminalState
	unsubscribe func()
}

// Unsubscribe detaches the caller without affecting the pump or any other
// subscriber (§4.7).
func (s *StreamSubscription) Unsubscribe() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (o *Orchestrator) resolveCandidates(model, pinned string) (providers.CandidateList, error) {
	if pinned == "" {
		return o.selector.Select(model)
	}

	p, ok := o.registry.ByName(pinned)
	if !ok || !p.Enabled || !o.tracker.IsHealthy(pinned) {
		return nil, &providers.NoHealthyProviderError{Model: model}
	}
	return providers.CandidateList{{Provider: p, UpstreamModel: model, RouteProvider: pinned}}, nil
}

func endpointFor(p *providers.Provider) string {
	if p.Kind == providers.KindAnthropic {
		return p.BaseURL + "/v1/messages"
	}
	return p.BaseURL + "/chat/completions"
}

func (o *Orchestrator) buildBody(c providers.Candidate, req *translate.AnthropicRequest) ([]byte, error) {
	if c.Provider.Kind == providers.KindAnthropic {
		upstream := *req
		upstream.Model = c.UpstreamModel
		upstream.Provider = ""
		return json.Marshal(upstream)
	}
	openaiReq, err := translate.RequestToOpenAI(req, c.UpstreamModel)
	if err != nil {
		return nil, err
	}
	return json.Marshal(openaiReq)
}

// HandleNonStreaming executes the non-streaming path of §4.8.
func (o *Orchestrator) HandleNonStreaming(ctx context.Context, req *translate.AnthropicRequest, inbound http.Header, requestID string) (*NonStreamResult, error) {
	fp, err := dedup.Fingerprint(req)
	if err != nil {
		return nil, &providers.ValidationError{Field: "request", Message: err.Error()}
	}

	admission := o.dedupIdx.Admit(fp, dedup.NonStreaming)
	o.recordDedupAdmission(admission.Role)
	if admission.Role == dedup.RoleSubscriberNonStreaming {
		waitCtx, cancel := context.WithTimeout(ctx, o.settings.Caching.Read)
		defer cancel()
		res, err := admission.Future.Wait(waitCtx)
		if err != nil {
			return nil, err
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return &NonStreamResult{Body: res.Body, StatusCode: res.StatusCode, ProviderUsed: res.ProviderUsed, Duplicate: true}, nil
	}

	handle := admission.Handle
	candidates, err := o.resolveCandidates(req.Model, req.Provider)
	if err != nil {
		handle.Complete(dedup.Outcome{Err: err}, false)
		return nil, err
	}

	var last outcome
	for i, cand := range candidates {
		started := time.Now()
		result, att := o.attemptNonStreaming(ctx, cand, req, inbound, requestID)
		if att.err == nil {
			o.tracker.RecordSuccess(cand.Provider.Name)
			o.sticky.Touch(cand.Provider.Name)
			o.recordAttempt(cand.Provider.Name, req.Model, started, nil, "")
			handle.Complete(dedup.Outcome{Body: result.Body, StatusCode: result.StatusCode, ProviderUsed: cand.Provider.Name}, false)
			result.ProviderUsed = cand.Provider.Name
			return result, nil
		}

		last = att
		if att.countsUnhealthy {
			o.tracker.RecordError(cand.Provider.Name, att.kind)
		}
		o.recordAttempt(cand.Provider.Name, req.Model, started, att.err, att.kind)
		slog.Warn("non-streaming attempt failed",
			"provider", cand.Provider.Name, "request_id", requestID, "kind", att.kind, "error", att.err)

		if !att.failoverEligible || i == len(candidates)-1 {
			break
		}
	}

	handle.Complete(dedup.Outcome{Err: last.err, StatusCode: surfaceStatus(last)}, false)
	return nil, last.err
}

func (o *Orchestrator) attemptNonStreaming(ctx context.Context, cand providers.Candidate, req *translate.AnthropicRequest, inbound http.Header, requestID string) (*NonStreamResult, outcome) {
	headers, err := o.authRes.Resolve(cand.Provider, inbound)
	if err != nil {
		return nil, outcome{err: err}
	}

	body, err := o.buildBody(cand, req)
	if err != nil {
		return nil, outcome{err: &providers.ValidationError{Field: "request", Message: err.Error()}}
	}

	client, err := o.clients.get(cand.Provider, o.settings.NonStreaming)
	if err != nil {
		return nil, outcome{err: err}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, o.settings.NonStreaming.Connect+o.settings.NonStreaming.Read)
	defer cancel()

	headerMap := make(map[string]string, len(headers))
	for k := range headers {
		headerMap[k] = headers.Get(k)
	}

	resp, err := client.Do(attemptCtx, http.MethodPost, endpointFor(cand.Provider), body, headerMap)
	if err != nil {
		return nil, o.classifyTransportErr(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, outcome{kind: providers.KindReadTimeout, failoverEligible: o.settings.FailoverErrorKinds[providers.KindReadTimeout], countsUnhealthy: true, err: err}
	}

	isOAuth := cand.Provider.Auth.Scheme == providers.AuthOAuth
	if resp.StatusCode >= 400 {
		return nil, o.classifyHTTP(resp.StatusCode, isOAuth, respBody, cand.Provider.Name)
	}

	translated, err := o.translateResponse(cand, respBody)
	if err != nil {
		return nil, outcome{err: &providers.ParseError{Provider: cand.Provider.Name, Cause: err}}
	}

	if msg, kind, ok := translate.IsErrorBody(translated); ok {
		return nil, o.classifyAPIError(cand.Provider.Name, msg, kind)
	}

	return &NonStreamResult{Body: translated, StatusCode: http.StatusOK}, outcome{}
}

func (o *Orchestrator) translateResponse(cand providers.Candidate, body []byte) ([]byte, error) {
	if cand.Provider.Kind == providers.KindAnthropic {
		return body, nil
	}
	var openaiResp translate.OpenAIResponse
	if err := json.Unmarshal(body, &openaiResp); err != nil {
		return nil, err
	}
	anthropicResp, err := translate.ResponseFromOpenAI(&openaiResp)
	if err != nil {
		return nil, err
	}
	return json.Marshal(anthropicResp)
}

// HandleStreaming executes the streaming path of §4.8.
func (o *Orchestrator) HandleStreaming(ctx context.Context, req *translate.AnthropicRequest, inbound http.Header, requestID string) (*StreamResult, error) {
	fp, err := dedup.Fingerprint(req)
	if err != nil {
		return nil, &providers.ValidationError{Field: "request", Message: err.Error()}
	}

	admission := o.dedupIdx.Admit(fp, dedup.Streaming)
	o.recordDedupAdmission(admission.Role)
	if admission.Role == dedup.RoleSubscriberStreaming {
		waitCtx, cancel := context.WithTimeout(ctx, o.settings.Caching.Read)
		defer cancel()
		handleIface, err := admission.WaitForStream(waitCtx)
		if err != nil {
			return nil, err
		}
		b, ok := handleIface.(*broadcaster.Broadcaster)
		if !ok {
			return nil, fmt.Errorf("internal error: unexpected stream handle type")
		}
		id, ch, terminal := b.Subscribe()
		o.addBroadcasterSubscriber(1)
		return &StreamResult{
			ProviderUsed: DuplicateProviderLabel,
			Duplicate:    true,
			Sub:          &StreamSubscription{Chunks: ch, Terminal: terminal, unsubscribe: func() { o.addBroadcasterSubscriber(-1); b.Unsubscribe(id) }},
		}, nil
	}

	handle := admission.Handle
	candidates, err := o.resolveCandidates(req.Model, req.Provider)
	if err != nil {
		handle.Complete(dedup.Outcome{Err: err}, false)
		return nil, err
	}

	var last outcome
	for i, cand := range candidates {
		started := time.Now()
		resp, cancel, att := o.openStream(ctx, cand, req, inbound)
		if att.err == nil {
			o.recordAttempt(cand.Provider.Name, req.Model, started, nil, "")
			b := broadcaster.New(requestID, cand.Provider.Name, o.settings.BroadcasterBound)
			handle.AttachStream(b)
			o.sticky.Touch(cand.Provider.Name)

			go o.pumpAndFinalize(b, resp, cancel, cand, handle, requestID, req.Model, started)

			id, ch, terminal := b.Subscribe()
			o.addBroadcasterSubscriber(1)
			return &StreamResult{
				ProviderUsed: cand.Provider.Name,
				Sub:          &StreamSubscription{Chunks: ch, Terminal: terminal, unsubscribe: func() { o.addBroadcasterSubscriber(-1); b.Unsubscribe(id) }},
			}, nil
		}

		last = att
		if att.countsUnhealthy {
			o.tracker.RecordError(cand.Provider.Name, att.kind)
		}
		o.recordAttempt(cand.Provider.Name, req.Model, started, att.err, att.kind)
		slog.Warn("streaming attempt failed",
			"provider", cand.Provider.Name, "request_id", requestID, "kind", att.kind, "error", att.err)

		if !att.failoverEligible || i == len(candidates)-1 {
			break
		}
	}

	handle.Complete(dedup.Outcome{Err: last.err, StatusCode: surfaceStatus(last)}, false)
	return nil, last.err
}

// openStream performs the single HTTP attempt for a streaming candidate,
// returning the live response only on a 200 status (failover decisions for
// streaming happen entirely before any byte reaches the client, per §4.8).
func (o *Orchestrator) openStream(ctx context.Context, cand providers.Candidate, req *translate.AnthropicRequest, inbound http.Header) (*http.Response, context.CancelFunc, outcome) {
	headers, err := o.authRes.Resolve(cand.Provider, inbound)
	if err != nil {
		return nil, nil, outcome{err: err}
	}
	headers.Set("Accept", "text/event-stream")

	reqCopy := *req
	reqCopy.Stream = true
	body, err := o.buildBody(cand, &reqCopy)
	if err != nil {
		return nil, nil, outcome{err: &providers.ValidationError{Field: "request", Message: err.Error()}}
	}

	client, err := o.clients.get(cand.Provider, o.settings.Streaming)
	if err != nil {
		return nil, nil, outcome{err: err}
	}

	// No overall deadline on the stream's reader context: a streaming read
	// timeout resets on each received chunk (§5), which the pump, not a
	// fixed context deadline, is responsible for enforcing. A context
	// timeout here would kill long-lived streams after the connect window.
	attemptCtx, cancel := context.WithCancel(ctx)
	headerMap := make(map[string]string, len(headers))
	for k := range headers {
		headerMap[k] = headers.Get(k)
	}

	resp, err := client.Do(attemptCtx, http.MethodPost, endpointFor(cand.Provider), body, headerMap)
	if err != nil {
		cancel()
		return nil, nil, o.classifyTransportErr(err)
	}

	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		isOAuth := cand.Provider.Auth.Scheme == providers.AuthOAuth
		return nil, nil, o.classifyHTTP(resp.StatusCode, isOAuth, errBody, cand.Provider.Name)
	}

	return resp, cancel, outcome{}
}

// pumpAndFinalize drains resp into the Broadcaster, then performs the
// post-stream health/dedup classification described in §4.7.
func (o *Orchestrator) pumpAndFinalize(b *broadcaster.Broadcaster, resp *http.Response, cancel context.CancelFunc, cand providers.Candidate, handle *dedup.Handle, requestID, model string, started time.Time) {
	defer resp.Body.Close()
	defer cancel()

	var source broadcaster.ChunkSource
	if cand.Provider.Kind == providers.KindAnthropic {
		source = &passthroughSource{r: resp.Body}
	} else {
		source = newTranslatingSource(resp.Body, translate.NewStreamTranslator())
	}

	b.Pump(source)

	terminal, pumpErr := b.Terminal()
	chunks := b.Chunks()
	found, msg := broadcaster.ScanForErrorEvent(chunks)

	switch {
	case found:
		o.tracker.RecordError(cand.Provider.Name, providers.KindStreamError)
		o.recordAttempt(cand.Provider.Name, model, started, fmt.Errorf("%s", msg), providers.KindStreamError)
		handle.Complete(dedup.Outcome{Body: bytes.Join(chunks, nil), ProviderUsed: cand.Provider.Name,
			Err: &providers.StreamTerminatedError{Provider: cand.Provider.Name, Message: msg}}, true)
	case terminal == broadcaster.TerminalErrored:
		o.tracker.RecordError(cand.Provider.Name, providers.KindReadTimeout)
		o.recordAttempt(cand.Provider.Name, model, started, pumpErr, providers.KindReadTimeout)
		handle.Complete(dedup.Outcome{ProviderUsed: cand.Provider.Name, Err: pumpErr}, true)
	default:
		o.tracker.RecordSuccess(cand.Provider.Name)
		o.recordAttempt(cand.Provider.Name, model, started, nil, "")
		handle.Complete(dedup.Outcome{Body: bytes.Join(chunks, nil), ProviderUsed: cand.Provider.Name}, false)
	}

	slog.Debug("stream finalized", "provider", cand.Provider.Name, "request_id", requestID, "terminal", terminal)
}
