package kpi

import "context"

type KPIRepository interface {
	Create(ctx context.Context, k KPI) (KPI, error)
	GetByID(ctx context.Context, id string) (KPI, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]KPI, error)
	// ListForManager returns KPIs created by the manager or targeting one of teamIDs or userIDs.
	ListForManager(ctx context.Context, managerID string, teamIDs, userIDs []string) ([]KPI, error)
	// ListForUser returns user-scoped KPIs targeting userID.
	ListForUser(ctx context.Context, userID string) ([]KPI, error)
}
