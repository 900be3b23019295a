// Package catalog aggregates published UMKM directory data for public
// pages: visibility gating, grouping items by vendor, gallery and featured
// selection, similar-vendor ranking, and filter/search with an incremental
// reveal window.
package catalog
