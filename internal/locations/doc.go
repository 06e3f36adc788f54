// Package locations polls the transit agency's vehicle API into dated
// position snapshots and resolves which bus a recording came from by
// matching snapshot timestamps against recording timestamps.
package locations
