package selfsign

import "errors"

var errInvalidPrivateKey = errors.New("self-sign supports only Ed25519 and ECDSA keys") //nolint:err113
