// Package metrics converts cluster-reported quantity strings into numeric
// values in canonical units (cores, bytes) and folds per-node or per-pod
// samples into cluster-wide totals and utilization percentages.
//
// Everything here is a pure function of its input. Callers fetch samples from
// the cluster, check availability, and forward the reports verbatim.
package metrics
