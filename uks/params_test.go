// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uks

import (
	"testing"

	"github.com/emer/emergent/v2/params"
)

func TestApplyParamsTogglesEnableLearning(t *testing.T) {
	_, u := newTestUKS(smallConfig())
	if !u.config.EnableLearning {
		t.Fatalf("setup: EnableLearning = false, want true")
	}

	sheet := params.Sheet{
		{Sel: "UKS", Params: params.Params{"UKS.EnableLearning": "false"}},
	}
	if err := u.ApplyParams(&sheet); err != nil {
		t.Fatalf("ApplyParams returned error: %v", err)
	}
	if u.config.EnableLearning {
		t.Errorf("EnableLearning = true after ApplyParams, want false")
	}
}

func TestApplyParamsIgnoresSelForOtherComponent(t *testing.T) {
	_, u := newTestUKS(smallConfig())
	sheet := params.Sheet{
		{Sel: "Motor", Params: params.Params{"UKS.EnableLearning": "false"}},
	}
	if err := u.ApplyParams(&sheet); err != nil {
		t.Fatalf("ApplyParams returned error: %v", err)
	}
	if !u.config.EnableLearning {
		t.Errorf("EnableLearning = false, want true (Sel for \"Motor\" should not match UKS)")
	}
}
