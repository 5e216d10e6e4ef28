// Package models contains the GORM persistence models of the quality
// management aggregates.
//
// Domain entities carry no ORM tags. Each model owns the table mapping of one
// aggregate or child row and converts to and from the domain type with
// ToDomain and FromDomain. Child collections (supplier contacts and
// qualifications, inspection findings) live in their own tables and keep the
// aggregate's ordering in a position column.
package models
