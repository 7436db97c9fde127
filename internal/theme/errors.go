package theme

import "errors"

var ErrUnknownTheme = errors.New("unknown theme")
