// Package dataset reads the spot locations list and writes extracted records
// in the analysis CSV layout consumed by the merge stage.
//
// Output columns, in order:
//
//	name,new_region,month,clean,blown_out,too_small,flat,height_0_4,height_4_6,height_6_10,height_10_plus
package dataset
