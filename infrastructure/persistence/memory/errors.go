package memory

import "errors"

// errDuplicateLabel mirrors the unique index on active labels in SQL
var errDuplicateLabel = errors.New("memory: label already active on resource")
