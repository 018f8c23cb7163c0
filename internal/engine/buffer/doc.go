// Package buffer provides a thread-safe text buffer with byte-offset
// addressing, line/column coordinate conversion and atomic transactions.
// It is the document primitive the completion engine previews edits into.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Transactions: ordered, non-overlapping edit sets applied atomically
//   - A single-slot savepoint for rolling preview edits back
//   - Coordinate conversion between byte offsets and line/column positions
//   - UTF-16 coordinate support for LSP compatibility
//   - Revision tracking for change management
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello, World!")
//	buf.Savepoint()
//	buf.Apply(buffer.InsertAt(5, "!!!"))
//	buf.RestoreSavepoint() // back to "Hello, World!"
//
// Position Types:
//
//   - ByteOffset: Raw byte position in the buffer
//   - Point: Line and column position (0-indexed, column in bytes)
//   - PointUTF16: Line and column position with UTF-16 code unit column
//     (for LSP compatibility)
package buffer
