// seehuhn.de/go/ccm - colour management core for image processing
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ccm

import "errors"

// Sentinel errors returned by the profile query and transform builder.
// Wrap with [github.com/pkg/errors.Wrap] at call sites that need to attach
// additional context; match with errors.Is against these values.
var (
	errSingularMatrix  = errors.New("icc: singular colour matrix")
	errNoWhitePoint    = errors.New("icc: profile has no media white point")
	errNoColorants     = errors.New("icc: profile has no usable colorant matrix")
	errDispatchMiss    = errors.New("icc: no pixel conversion path for this format/depth combination")
	errMismatchedDepth = errors.New("icc: source and destination buffer lengths do not match the expected pixel count")
)
