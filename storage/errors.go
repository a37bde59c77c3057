package storage

import "errors"

var ErrItemNotFound = errors.New("item not found in storage")
var ErrItemAlreadyExists = errors.New("item with the same key already exists")
