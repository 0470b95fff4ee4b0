// Package fwstate defines the converged forwarding state produced by the
// network simulator and the lazy path/reachability queries evaluated
// against it by the hard-policy monitor and the soft-cost functions.
//
// The identifier types below (RouterId, Prefix, AsId, LinkWeight) are the
// module's most primitive shared vocabulary: dense integer handles into
// flat tables, never pointers, per the "no back-pointers" design note
// carried over from the original implementation. They live here, the
// leaf-most package, so that netsim, hardpolicy and softcost can all use
// them without creating an import cycle back into netsim.
package fwstate

// RouterId is a dense index into the network's router table.
type RouterId int

// NoRouter is the sentinel meaning "no such router". It is not the zero
// value: RouterId 0 is a valid router.
const NoRouter RouterId = -1

// Prefix is a compact integer tag for an advertised IP prefix.
type Prefix int32

// AsId is a BGP autonomous system number.
type AsId uint32

// LinkWeight is an IGP link cost. Must be strictly positive.
type LinkWeight float64

// NoNextHop is the sentinel forwarding-entry value ⋄ from spec.md §3: "no
// route selected for this (router, prefix) pair".
const NoNextHop RouterId = -1
