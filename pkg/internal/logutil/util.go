/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logutil formats the command and action scoped log lines of the controller.
package logutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/spi/log"

	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
)

// LogError logs a failed action. Errors carrying an exchange error code are tagged with it.
func LogError(logger log.Logger, command, action string, err error, data ...string) {
	var coded *errcode.Error
	if errors.As(err, &coded) {
		data = append(data, CreateKeyValueString("code", fmt.Sprint(uint32(coded.Code()))))
	}

	logger.Errorf("command=[%s] action=[%s] %s errMsg=[%s]", command, action, join(data), err)
}

// LogWarn logs a recoverable failure of an action.
func LogWarn(logger log.Logger, command, action, msg string, data ...string) {
	logger.Warnf("command=[%s] action=[%s] %s msg=[%s]", command, action, join(data), msg)
}

// LogDebug logs the progress of an action.
func LogDebug(logger log.Logger, command, action, msg string, data ...string) {
	logger.Debugf("command=[%s] action=[%s] %s msg=[%s]", command, action, join(data), msg)
}

// LogInfo logs an action that was rejected before it ran.
func LogInfo(logger log.Logger, command, action, msg string, data ...string) {
	logger.Infof("command=[%s] action=[%s] %s msg=[%s]", command, action, join(data), msg)
}

// CreateKeyValueString creates a concatenated string.
func CreateKeyValueString(key, val string) string {
	return fmt.Sprintf("%s=[%s]", key, val)
}

// HandleKeyValue tags a log line with an exchange or connection handle.
func HandleKeyValue(key string, h handle.Handle) string {
	return CreateKeyValueString(key, h.String())
}

func join(data []string) string {
	return strings.Join(data, " ")
}
