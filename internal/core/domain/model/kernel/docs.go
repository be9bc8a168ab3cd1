// Package kernel provides shared value objects used across the deliveries
// domain model. It currently contains the UUID value object that identifies
// deliveries, registrations, and domain events.
//
// Value objects in this package are immutable, validated on construction, and
// safe for concurrent use.
package kernel
