package domain

import "context"

type CheckHealth struct {
	Repository HealthRepository
}

func (d *CheckHealth) Run(ctx context.Context) error {
	if err := d.Repository.Ping(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}
