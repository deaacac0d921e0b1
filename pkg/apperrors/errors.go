package apperrors

import "errors"

var (
	ErrEmptyDataset     = errors.New("dataset has no columns")
	ErrDuplicateDataset = errors.New("dataset name already in use")
)
