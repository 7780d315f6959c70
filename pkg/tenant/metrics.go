package tenant

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/dmitrymomot/tenantguard/pkg/tenant"

func newResolutionCounter(mp metric.MeterProvider) metric.Int64Counter {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	c, err := mp.Meter(meterName).Int64Counter(
		"tenant.resolutions",
		metric.WithDescription("Tenant slug resolutions by source"),
	)
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter("tenant.resolutions")
	}
	return c
}

func (r *Resolver) record(ctx context.Context, src Source) {
	r.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("source", string(src))))
}
