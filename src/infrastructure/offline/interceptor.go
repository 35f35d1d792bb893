package offline

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	domainOffline "pet-emergency-api/src/domain/offline"
	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// queuedResponseBody is the success-shaped body synthesized for callers when a
// submission was captured into the durable queue instead of reaching the server.
const queuedResponseBody = `{"success":true,"queued":true}`

// Interceptor wraps the outbound transport for emergency submissions. A
// network-level failure never surfaces to the caller: the payload is captured
// into the durable queue and a 202 response is synthesized so the UI can
// proceed without blocking on retries. Application-level errors (any HTTP
// response) pass through untouched.
type Interceptor struct {
	base       http.RoundTripper
	store      domainOffline.Store
	bridge     *Bridge
	Logger     *logger.Logger
	pathSuffix string
}

// NewInterceptor builds the transport wrapper. Only POSTs whose path ends with
// pathSuffix (the emergency-creation endpoint) are captured.
func NewInterceptor(
	base http.RoundTripper,
	store domainOffline.Store,
	bridge *Bridge,
	loggerInstance *logger.Logger,
	pathSuffix string,
) *Interceptor {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Interceptor{
		base:       base,
		store:      store,
		bridge:     bridge,
		Logger:     loggerInstance,
		pathSuffix: pathSuffix,
	}
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || !strings.HasSuffix(req.URL.Path, i.pathSuffix) {
		return i.base.RoundTrip(req)
	}

	// A request body is consumable once. Materialize it fully up front so the
	// payload survives the failed network attempt.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	resp, err := i.base.RoundTrip(req)
	if err == nil {
		// reached the server; application errors are not ours to mask
		return resp, nil
	}

	headers := make(map[string]string, len(req.Header))
	for k := range req.Header {
		headers[k] = req.Header.Get(k)
	}

	record := &domainOffline.QueuedSubmission{
		URL:        req.URL.String(),
		Method:     req.Method,
		Headers:    headers,
		Body:       body,
		Timestamp:  time.Now(),
		RetryCount: 0,
		MaxRetries: domainOffline.DefaultMaxRetries,
	}

	id, enqueueErr := i.store.Enqueue(record)
	if enqueueErr != nil {
		// the durable store is gone; fail loudly rather than pretend to queue
		i.Logger.Error("Failed to queue submission after network error",
			zap.Error(enqueueErr),
			zap.NamedError("networkError", err))
		return nil, enqueueErr
	}

	i.Logger.Info("Submission captured into offline queue",
		zap.Int64("id", id),
		zap.NamedError("networkError", err))
	i.bridge.Broadcast(Notification{Kind: KindOfflineRequestQueued, RequestID: id})

	return &http.Response{
		Status:     "202 Accepted",
		StatusCode: http.StatusAccepted,
		Proto:      req.Proto,
		ProtoMajor: req.ProtoMajor,
		ProtoMinor: req.ProtoMinor,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(queuedResponseBody)),
		Request:    req,
	}, nil
}
