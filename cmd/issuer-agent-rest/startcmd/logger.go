/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"fmt"
	"os"

	"github.com/hyperledger/aries-framework-go/component/log"
	spilog "github.com/hyperledger/aries-framework-go/spi/log"
	"github.com/sirupsen/logrus"
)

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// logrusProvider hands out logrus entries tagged with the module name. Level filtering stays with
// the module levels set through log.SetLevel, so the base logger logs everything it is given.
type logrusProvider struct {
	base *logrus.Logger
}

func (p *logrusProvider) GetLogger(module string) spilog.Logger {
	return p.base.WithField("module", module)
}

func newLogrusProvider(format string) (*logrusProvider, error) {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetLevel(logrus.DebugLevel)

	switch format {
	case "", logFormatText:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case logFormatJSON:
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format '%s'", format)
	}

	return &logrusProvider{base: base}, nil
}

// initLogger routes every module logger through logrus. Only the first call takes effect.
func initLogger(format string) error {
	p, err := newLogrusProvider(format)
	if err != nil {
		return err
	}

	log.Initialize(p)

	return nil
}
