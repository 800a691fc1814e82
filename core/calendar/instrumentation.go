package calendar

import "go.opentelemetry.io/otel"

const scopeName = "github.com/voxlabs/jarvis-core/core/calendar"

var tracer = otel.Tracer(scopeName)
