package pakbuild

import "errors"

// ErrDuplicatePath indicates two inputs share the same path. The build is
// aborted before any bytes are produced.
var ErrDuplicatePath = errors.New("duplicate path")
