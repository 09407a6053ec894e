// Package stages holds the concrete enrichment stages the pipeline runs over
// a trip store: filesystem scanning, day assignment, location inference, and
// the vision-model annotations.
package stages
