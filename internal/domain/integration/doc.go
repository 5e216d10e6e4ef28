// Package integration contains the ports of the ERP integration boundary.
// The anti-corruption layer translating ERP records lives in the
// infrastructure layer and implements the Translator port defined here.
//
// Key concepts:
//   - Provider: identity of an external ERP (SAP, Oracle)
//   - ExternalRecord: a raw record in the provider's own field names
//   - MappingTable: declarative field mappings per (provider, entity type)
//   - Translator: bidirectional conversion between ExternalRecord and domain aggregates
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces and mapping data types) are defined here in the domain layer
//   - Adapters (translators, factory) are in the infrastructure layer
package integration
