package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	internalaws "github.com/imrishuroy/go-dispute-reconciler/internal/aws"
	"github.com/imrishuroy/go-dispute-reconciler/internal/envelope"
	"github.com/imrishuroy/go-dispute-reconciler/internal/staging"
)

// CaptureConfig groups dependencies for the capture endpoint.
type CaptureConfig struct {
	S3            internalaws.S3API
	StagingBucket string
	Publisher     *internalaws.Publisher // optional staged-notice queue
}

// RegisterCaptureRoutes registers the webhook capture route.
//
// Every request is staged before the method check: non-POST junk still
// lands in staging, where the next reconciliation run quarantines it. POST
// echoes the body back; anything else gets the fixed 400 message.
func RegisterCaptureRoutes(r *gin.Engine, cfg CaptureConfig) {
	store := staging.NewStore(cfg.S3, cfg.StagingBucket)

	r.Any("/webhook", func(c *gin.Context) {
		ctx := c.Request.Context()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read_body_failed"})
			return
		}

		env := envelope.Envelope{
			Headers: flattenHeaders(c.Request.Header),
			Body:    bodyJSON(body),
			Method:  c.Request.Method,
		}
		data, err := json.Marshal(env)
		if err != nil {
			log.Printf("[capture] marshal envelope: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "marshal_failed"})
			return
		}

		key := uuid.NewString() + ".json"
		if err := store.Put(ctx, key, data); err != nil {
			log.Printf("[capture] stage envelope: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stage_failed"})
			return
		}
		log.Printf("[capture] staged %s (%d bytes)", key, len(data))

		if cfg.Publisher != nil {
			// best-effort; a queue outage must not fail the webhook
			if err := cfg.Publisher.SendStagedNotice(ctx, key, nil); err != nil {
				log.Printf("[capture] staged notice: %v", err)
			}
		}

		if c.Request.Method != http.MethodPost {
			c.String(http.StatusBadRequest, "No POST detected")
			return
		}
		c.Data(http.StatusOK, c.ContentType(), body)
	})
}

// flattenHeaders keeps the first value of each header, matching the
// single-valued map stored in the envelope.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// bodyJSON stores the body as-is when it is valid JSON, otherwise as a
// JSON string, so the envelope always decodes.
func bodyJSON(body []byte) json.RawMessage {
	if json.Valid(body) && len(body) > 0 {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}
