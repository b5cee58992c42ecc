// Package selection holds the operator's audience selection and the logic
// that keeps it consistent with the taxonomy.
//
// State is the persisted selection record. Resolve adds the sole leaf of any
// selected sub-category (a fixed point applied in one batch), PruneOrphans
// drops leaves left without a selected parent, and Aggregate sums reachable
// audience and unions tags over the counted leaves. Controller is the single
// writer: it applies operator toggles, re-runs the cascade and aggregation,
// saves through a Store, and hands an Outcome to each listener.
//
// Unknown keys are ignored rather than rejected, so no operation can fail.
package selection
