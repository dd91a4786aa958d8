package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
	"AstroCore/internal/domain/service"
	pkgkafka "AstroCore/pkg/kafka"
	"AstroCore/pkg/logger"
	"AstroCore/pkg/metrics"
)

// PrecomputeHandler consumes PrecomputeRequest messages and computes the
// natal chart through the cached charter so later requests hit the cache.
type PrecomputeHandler struct {
	topic   string
	natal   service.NatalCharter
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewPrecomputeHandler(topic string, natal service.NatalCharter, m domrepo.Metrics, log *logger.Logger) *PrecomputeHandler {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &PrecomputeHandler{topic: topic, natal: natal, metrics: m, log: log}
}

func (h *PrecomputeHandler) Topic() string { return h.topic }

// incoming message schema: models.PrecomputeRequest
func (h *PrecomputeHandler) Handle(ctx context.Context, b []byte) error {
	var msg models.PrecomputeRequest
	if err := json.Unmarshal(b, &msg); err != nil {
		h.metrics.RecordError("precompute_unmarshal")
		return fmt.Errorf("decode precompute request: %w", err)
	}
	hs, err := models.ParseHouseSystem(msg.HouseSystem)
	if err != nil {
		h.metrics.RecordError("precompute_invalid")
		return fmt.Errorf("precompute request: %w", err)
	}
	if _, err := h.natal.Compute(ctx, models.NatalRequest{Birth: msg.Birth, HouseSystem: hs, WithAspects: msg.WithAspects}); err != nil {
		return fmt.Errorf("precompute natal chart: %w", err)
	}
	h.log.Debug("natal chart precomputed", logger.String("date", msg.Birth.Date), logger.String("timezone", msg.Birth.Timezone))
	return nil
}

var _ pkgkafka.MessageHandler = (*PrecomputeHandler)(nil)
