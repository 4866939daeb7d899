/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package policy

import (
	"errors"
	"fmt"
)

// ErrWhitelistTooLarge returned when update contains whitelist larger than MaxWhitelistSize
var ErrWhitelistTooLarge = errors.New("whitelist exceeds maximal size")

// ErrEmptyUpdate returned by Store.Apply for nil update
var ErrEmptyUpdate = errors.New("empty policy update")

// BlockError tells the caller that the intercepted operation must be aborted before it reaches the database
type BlockError struct {
	CheckType CheckType
	Reason    string
}

func (err *BlockError) Error() string {
	if err.Reason == "" {
		return fmt.Sprintf("operation blocked by %s policy", err.CheckType)
	}
	return fmt.Sprintf("operation blocked by %s policy: %s", err.CheckType, err.Reason)
}

// NewBlockError returns BlockError for check type
func NewBlockError(t CheckType, reason string) *BlockError {
	return &BlockError{CheckType: t, Reason: reason}
}

// IsBlocked returns true if err (or any error it wraps) is BlockError
func IsBlocked(err error) bool {
	var blockError *BlockError
	return errors.As(err, &blockError)
}
