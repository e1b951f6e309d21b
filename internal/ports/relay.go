package ports

import (
	"context"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

type RelayProcessor interface {
	Process(ctx context.Context, payload *domain.RelayPayload) (*domain.RelayResponse, error)
}
