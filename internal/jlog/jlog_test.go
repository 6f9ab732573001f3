package jlog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetVerboseRaisesLevel(t *testing.T) {
	logger.SetLevel(logrus.WarnLevel)

	SetVerbose()
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestSetDebugRaisesLevel(t *testing.T) {
	logger.SetLevel(logrus.WarnLevel)

	SetDebug()
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestLevelFuncsDoNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		Debugf("debug %d", 1)
		Infof("info %d", 2)
		Warnf("warn %d", 3)
		Errorf("error %d", 4)
	})
}
