// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that retry
// delays and resync intervals are deterministic in tests.
//
// Production code accepts a Clock instead of calling time.Now,
// time.After, or time.NewTicker directly. Real() is backed by the
// standard time package. Fake() stands still until Advance is called.
//
// Components take a Clock field in their config struct:
//
//	supervisor := watch.NewSupervisor(watch.SupervisorConfig{
//	    Clock: clock.Real(),
//	    // ...
//	})
//
// Tests use the fake and synchronize with WaitForTimers before
// advancing, which removes the race between a goroutine registering
// a timer and the test firing it:
//
//	c := clock.Fake(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
//	go supervisor.Run(ctx)
//	c.WaitForTimers(1)
//	c.Advance(10 * time.Second)
package clock
