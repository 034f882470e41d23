/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package config

import (
	"os"
	"testing"
)

func TestInitConfigDefaults(t *testing.T) {
	os.Unsetenv("corroborationWindowSeconds")
	os.Unsetenv("port")

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig failed: %s", err.Error())
	}

	if AppConfig.Port != "31025" {
		t.Errorf("expected default port 31025, got %s", AppConfig.Port)
	}

	if AppConfig.CorroborationWindowSeconds != 300 {
		t.Errorf("expected default corroboration window of 300s, got %d",
			AppConfig.CorroborationWindowSeconds)
	}
}

func TestInitConfigOverrides(t *testing.T) {
	os.Setenv("corroborationWindowSeconds", "60")
	os.Setenv("loggingLevel", "debug")
	defer os.Unsetenv("corroborationWindowSeconds")
	defer os.Unsetenv("loggingLevel")

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig failed: %s", err.Error())
	}

	if AppConfig.CorroborationWindowSeconds != 60 {
		t.Errorf("expected corroboration window of 60s, got %d",
			AppConfig.CorroborationWindowSeconds)
	}

	if AppConfig.LoggingLevel != "debug" {
		t.Errorf("expected logging level debug, got %s", AppConfig.LoggingLevel)
	}
}

func TestInitConfigRejectsBadWindow(t *testing.T) {
	os.Setenv("corroborationWindowSeconds", "0")
	defer os.Unsetenv("corroborationWindowSeconds")

	if err := InitConfig(); err == nil {
		t.Error("expected error for zero corroboration window")
	}

	os.Setenv("corroborationWindowSeconds", "not-a-number")
	if err := InitConfig(); err == nil {
		t.Error("expected error for non-integer corroboration window")
	}
}
