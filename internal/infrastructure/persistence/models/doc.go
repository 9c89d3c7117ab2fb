// Package models contains GORM persistence models for the rental tables.
// Domain entities in internal/domain/rental carry no ORM tags; the models
// here own the table mappings and convert with ToDomain/FromDomain.
//
// Tables follow the ownership chain landlords -> properties -> tenants ->
// payments. The schema itself is owned by the migration package.
package models
