/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("With default options", func() {
		chain := New()
		s.Assert().False(chain.failFast)
		s.Assert().Empty(chain.validators)
		s.Assert().NoError(chain.Validate())
	})
	s.Run("With options applied in order", func() {
		s.Assert().True(New(FailFast()).failFast)
		s.Assert().False(New(FailFast(), AllErrors()).failFast)
	})
}

func (s *validationTestSuite) TestValidate() {
	s.Run("With a single violation", func() {
		err := New().AddValidator(NewPositiveValidator("count", 0)).Validate()
		s.Assert().EqualError(err, "the [count] must be greater than zero, got 0")
	})
	s.Run("With FailFast stopping at the first violation", func() {
		err := New(FailFast()).
			AddValidator(NewNotNilValidator("target", nil)).
			AddAssertion(false, "this is false").
			Validate()
		s.Assert().EqualError(err, "the [target] is required")
	})
	s.Run("With AllErrors collecting every violation", func() {
		chain := New(AllErrors()).
			AddValidator(NewPositiveValidator("limit", -3)).
			AddAssertion(true, "never reported").
			AddAssertion(false, "this is false")
		err := chain.Validate()
		s.Assert().EqualError(err, "the [limit] must be greater than zero, got -3; this is false")
		s.Assert().EqualError(chain.Validate(), err.Error())
	})
	s.Run("With a custom validator", func() {
		failure := errors.New("custom failure")
		err := New().AddValidator(ValidatorFunc(func() error { return failure })).Validate()
		s.Assert().ErrorIs(err, failure)
	})
	s.Run("With nil detection", func() {
		var target *int
		var filter func()
		value := 3
		s.Assert().Error(NewNotNilValidator("target", target).Validate())
		s.Assert().Error(NewNotNilValidator("filter", filter).Validate())
		s.Assert().NoError(NewNotNilValidator("target", &value).Validate())
		s.Assert().NoError(NewNotNilValidator("count", value).Validate())
		s.Assert().NoError(NewPositiveValidator("count", uint(value)).Validate())
	})
}
