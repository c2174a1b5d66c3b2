package errors

import "errors"

// ErrOptimisticLock the row was changed by another writer since it was read
var ErrOptimisticLock = errors.New("el registro fue modificado por otra operación, recargue e intente de nuevo")
