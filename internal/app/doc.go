// Package app composes the dlog node: the Ω ledger and its services are
// wired here into a single Application with a managed lifecycle.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── ledger/         # Account ids, snapshots, journal entries
//	│   ├── landlock/       # Land-lock claims
//	│   ├── planet/         # φ-planet catalogue and gravity profiles
//	│   └── bridge/         # Minecraft bridge player state
//	├── ledger/             # The ledger state machine and Ω digest
//	├── storage/            # Store interfaces, memory impl, JSONL journal
//	├── services/           # Bank, locks, bridge and sky services
//	├── httpapi/            # HTTP handlers and the snapshot websocket
//	├── system/             # Service lifecycle management
//	└── metrics/            # Prometheus registry and instruments
//
// # Responsibilities
//
// The app package is responsible for:
//
//   - Building the ledger state from the monetary configuration
//   - Seeding genesis balances before any service starts
//   - Composing services with their stores and logger
//   - Registering background runners (block ticker, sky scheduler)
//
// Business rules live in internal/app/ledger and internal/app/services;
// this package only wires them together.
package app
