package billing

import (
	"context"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
)

// StatsUseCase agregados de facturación para el dashboard. Solo lectura.
type StatsUseCase struct {
	docRepo repository.FiscalDocumentRepository
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(docRepo repository.FiscalDocumentRepository) *StatsUseCase {
	return &StatsUseCase{docRepo: docRepo}
}

// GetStats devuelve conteos por estado, tasa de éxito y documentos recientes.
func (uc *StatsUseCase) GetStats(ctx context.Context) (*dto.BillingStatsResponse, error) {
	const recentLimit = 10
	stats, err := uc.docRepo.Stats(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	resp := &dto.BillingStatsResponse{
		SuccessRate:    stats.SuccessRate,
		CountsByStatus: make([]dto.StatusCountDTO, 0, len(stats.CountsByStatus)),
		Recent:         make([]dto.DocumentStatusDTO, 0, len(stats.Recent)),
	}
	for _, c := range stats.CountsByStatus {
		resp.CountsByStatus = append(resp.CountsByStatus, dto.StatusCountDTO{
			Status: c.Status,
			Count:  c.Count,
		})
	}
	for _, d := range stats.Recent {
		resp.Recent = append(resp.Recent, *toStatusDTO(d))
	}
	return resp, nil
}
