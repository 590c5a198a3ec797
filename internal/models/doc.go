// Package models defines the core domain models for Potledger.
//
// # Entities
//
//   - Group: a recurring set of people who play cash games together
//   - User: a registered account (authentication)
//   - Game: a single cash-game session owned by a group
//   - Transaction: a buy-in or cash-out recorded against a game
//   - SettlementRecord: a persisted "this transfer was paid" marker
//
// # Derived values
//
// Player balances, settlement transfers, and transfer statuses are computed
// fresh from the transaction set by the engine package and are never stored.
// Only SettlementRecord (the paid/unpaid overlay) is persisted.
//
// # Design principles
//
//  1. Monetary amounts are decimal.Decimal (two-decimal currency), never
//     binary floats.
//  2. Relationships use ID strings instead of pointers to avoid circular
//     references.
//  3. Timestamps are Unix seconds.
package models
