// Package repository define los contratos de almacenamiento de dominio.
//
// Las implementaciones concretas viven en internal/store/pg (PostgreSQL via pgx)
// e internal/store/memory (desarrollo y tests).
//
//	services/mobile ──► repository (interfaces) ──┬──► store/pg
//	                                              └──► store/memory
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - ErrNotFound / ErrConflict se comparan con errors.Is
package repository
