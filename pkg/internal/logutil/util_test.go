/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
)

type recorder struct {
	lines []string
}

func (r *recorder) record(level, msg string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(msg, args...))
}

func (r *recorder) Panicf(msg string, args ...interface{}) { r.record("PANIC", msg, args...) }
func (r *recorder) Fatalf(msg string, args ...interface{}) { r.record("FATAL", msg, args...) }
func (r *recorder) Errorf(msg string, args ...interface{}) { r.record("ERROR", msg, args...) }
func (r *recorder) Warnf(msg string, args ...interface{})  { r.record("WARN", msg, args...) }
func (r *recorder) Infof(msg string, args ...interface{})  { r.record("INFO", msg, args...) }
func (r *recorder) Debugf(msg string, args ...interface{}) { r.record("DEBUG", msg, args...) }

func TestLogError(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		r := &recorder{}

		LogError(r, "issuecredential", "Create", errors.New("boom"), CreateKeyValueString("sourceID", "1"))
		require.Equal(t, []string{"ERROR command=[issuecredential] action=[Create] sourceID=[1] errMsg=[boom]"}, r.lines)
	})

	t.Run("coded error", func(t *testing.T) {
		r := &recorder{}

		LogError(r, "issuecredential", "SendOffer", errcode.New(errcode.NotReady, "SendOffer", nil))
		require.Len(t, r.lines, 1)
		require.Contains(t, r.lines[0], fmt.Sprintf("code=[%d]", uint32(errcode.NotReady)))
	})
}

func TestLogLevels(t *testing.T) {
	r := &recorder{}

	LogWarn(r, "connection", "Close", "gone")
	LogDebug(r, "connection", "Open", "success", HandleKeyValue("handle", handle.Handle(7)))
	LogInfo(r, "connection", "Open", "invalid request")

	require.Equal(t, []string{
		"WARN command=[connection] action=[Close]  msg=[gone]",
		"DEBUG command=[connection] action=[Open] handle=[7] msg=[success]",
		"INFO command=[connection] action=[Open]  msg=[invalid request]",
	}, r.lines)
}
