// Package folio is a multi-currency portfolio accounting and performance
// engine. It turns a raw transaction log into FIFO tax-lot cost basis,
// realized and unrealized gains, tax liability under pluggable tax policies,
// and a time-weighted-return series, and rolls holdings up into portfolio
// and global totals for a chosen display currency.
//
// The engine is a pure, synchronous computation over in-memory inputs:
// transactions, per-security price histories, a point-in-time exchange-rate
// snapshot, and portfolio configurations. It performs no I/O and keeps no
// shared mutable state, so identical inputs always produce identical
// outputs.
package folio
