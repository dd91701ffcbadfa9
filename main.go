// =============================================================================
// Presentielijst - Main Entry Point
// =============================================================================
//
// USAGE:
//   presentielijst process   - Build attendance lists from a member export
//   presentielijst columns   - Show how the export columns are recognised
//   presentielijst trials    - Manage trial participants
//   presentielijst version   - Display the application version
//
// LAYOUT:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Import pipeline, storage and workbook export
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/presentielijst/cmd"
)

func main() {
	cmd.Execute()
}
