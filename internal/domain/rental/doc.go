// Package rental holds the landlord → property → tenant → payment ownership
// chain. Every tenant or payment lookup is scoped to a landlord.
package rental
