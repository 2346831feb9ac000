package heap

import (
	"minidb/pkg/block"
	"minidb/pkg/page"
)

// Handle is the opaque (block-id, record-id) pair naming one stored record,
// stable across mutations to unrelated records in the same relation (spec
// §3.1). It is invalidated only by deletion of its own record.
type Handle struct {
	Block  block.ID
	Record page.RecordID
}
