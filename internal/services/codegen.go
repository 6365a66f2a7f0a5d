package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// CodeGenerator produces a numeric one-time code.
type CodeGenerator func() (string, error)

// RandomCode draws a uniform number below 10^6 and zero-pads it, which
// makes every digit independently uniform over 0-9.
func RandomCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the wall clock in UTC.
var SystemClock Clock = systemClock{}
