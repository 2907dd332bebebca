/*
Copyright (c) Facebook, Inc. and its affiliates.

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

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestIncrementsCounterAndHistogram(t *testing.T) {
	c := NewCollector("xcmp_test_a")
	c.ObserveRequest("0x500", 10*time.Millisecond, nil, false)
	c.ObserveRequest("0x500", 20*time.Millisecond, nil, false)

	require.Equal(t, float64(2), testutil.ToFloat64(c.Requests.WithLabelValues("0x500")))
	require.Equal(t, float64(0), testutil.ToFloat64(c.Timeouts))
}

func TestObserveRequestRecordsTimeout(t *testing.T) {
	c := NewCollector("xcmp_test_b")
	c.ObserveRequest("0x802", time.Second, errors.New("timed out"), true)

	require.Equal(t, float64(1), testutil.ToFloat64(c.Timeouts))
}

func TestNilCollectorObserveRequestIsNoop(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.ObserveRequest("0x000", time.Millisecond, nil, false)
	})
}

func TestNewCollectorReusesRegisteredSeriesAcrossInstances(t *testing.T) {
	a := NewCollector("xcmp_test_shared")
	b := NewCollector("xcmp_test_shared")

	a.Requests.WithLabelValues("0x000").Inc()
	require.Equal(t, float64(1), testutil.ToFloat64(b.Requests.WithLabelValues("0x000")))
}
