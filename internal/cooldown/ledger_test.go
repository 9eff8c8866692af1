/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package cooldown

import (
	"testing"
	"time"
)

func TestInCooldown(t *testing.T) {
	ledger := NewLedger()
	now := time.Now()
	ledger.now = func() time.Time { return now }

	if ledger.InCooldown(KindTrigger, "r1", "n1", 5*time.Minute) {
		t.Error("never-fired node should not be in cooldown")
	}

	ledger.MarkFired(KindTrigger, "r1", "n1")
	if !ledger.InCooldown(KindTrigger, "r1", "n1", 5*time.Minute) {
		t.Error("freshly fired node should be in cooldown")
	}

	now = now.Add(4 * time.Minute)
	if !ledger.InCooldown(KindTrigger, "r1", "n1", 5*time.Minute) {
		t.Error("4m into a 5m cooldown should still suppress")
	}

	now = now.Add(1 * time.Minute)
	if ledger.InCooldown(KindTrigger, "r1", "n1", 5*time.Minute) {
		t.Error("elapsed cooldown should not suppress")
	}
}

func TestCooldownKindsAreIndependent(t *testing.T) {
	ledger := NewLedger()
	ledger.MarkFired(KindTrigger, "r1", "n1")

	if ledger.InCooldown(KindRecovery, "r1", "n1", time.Hour) {
		t.Error("trigger firing must not start the recovery cooldown")
	}
}

func TestCooldownScopedPerNode(t *testing.T) {
	ledger := NewLedger()
	ledger.MarkFired(KindTrigger, "r1", "n1")

	if ledger.InCooldown(KindTrigger, "r1", "n2", time.Hour) {
		t.Error("cooldown for n1 must not suppress n2")
	}
	if ledger.InCooldown(KindTrigger, "r2", "n1", time.Hour) {
		t.Error("cooldown for r1 must not suppress r2")
	}
}

func TestZeroPeriodDisables(t *testing.T) {
	ledger := NewLedger()
	ledger.MarkFired(KindTrigger, "r1", "n1")

	if ledger.InCooldown(KindTrigger, "r1", "n1", 0) {
		t.Error("zero period must disable suppression")
	}
}

func TestRestore(t *testing.T) {
	ledger := NewLedger()
	now := time.Now()
	ledger.now = func() time.Time { return now }

	ledger.Restore(KindTrigger, "r1", "n1", now.Add(-2*time.Minute))
	if !ledger.InCooldown(KindTrigger, "r1", "n1", 5*time.Minute) {
		t.Error("restored anchor should suppress within its period")
	}
	if ledger.InCooldown(KindTrigger, "r1", "n1", time.Minute) {
		t.Error("restored anchor older than the period should not suppress")
	}

	ledger.Restore(KindRecovery, "r1", "n1", time.Time{})
	if _, ok := ledger.LastFired(KindRecovery, "r1", "n1"); ok {
		t.Error("zero-time restore must be ignored")
	}
}

func TestForget(t *testing.T) {
	ledger := NewLedger()
	ledger.MarkFired(KindTrigger, "r1", "n1")
	ledger.MarkFired(KindRecovery, "r1", "n1")
	ledger.MarkFired(KindTrigger, "r1", "n2")
	ledger.MarkFired(KindTrigger, "r2", "n1")

	ledger.ForgetNode("r1", "n1")
	if _, ok := ledger.LastFired(KindTrigger, "r1", "n1"); ok {
		t.Error("ForgetNode should drop both kinds for the node")
	}
	if _, ok := ledger.LastFired(KindTrigger, "r1", "n2"); !ok {
		t.Error("ForgetNode must not touch other nodes")
	}

	ledger.ForgetRule("r1")
	if _, ok := ledger.LastFired(KindTrigger, "r1", "n2"); ok {
		t.Error("ForgetRule should drop the remaining r1 anchors")
	}
	if _, ok := ledger.LastFired(KindTrigger, "r2", "n1"); !ok {
		t.Error("ForgetRule must not touch other rules")
	}
}
