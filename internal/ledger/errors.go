package ledger

import "errors"

var ErrNoData = errors.New("no ledger data found")
