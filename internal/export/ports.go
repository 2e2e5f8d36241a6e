// Package export declares the ports for mirroring ledger data to an
// external destination. The only shipped implementation targets Google
// Sheets; the worker drives these ports off record change events.
package export

import (
	"context"

	"ledger/internal/core"
)

type (
	// TransactionWriter appends a transaction row to the mirror.
	TransactionWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// SnapshotWriter replaces the mirrored balance sheet snapshot.
	SnapshotWriter interface {
		WriteBalanceSheet(ctx context.Context, sheet core.BalanceSheet, asOf core.Date) error
	}

	// Exporter is the full mirror surface.
	Exporter interface {
		TransactionWriter
		SnapshotWriter
	}
)
