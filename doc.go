// Package skutil provides scikit-learn-style preprocessing and decomposition
// extensions for Go, built on gonum matrices.
//
// The centerpiece is the Yeo-Johnson power transformer: a per-feature
// maximum-likelihood estimator for the transform's shape parameter λ, with a
// numerically careful forward and inverse transform built around it. Column
// selective PCA and truncated-SVD wrappers round out the toolkit.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/vedraiyani/skutil/preprocessing"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{
//	        1.2, 4.1,
//	        0.7, 9.8,
//	        3.3, 1.0,
//	        2.0, 2.5,
//	    })
//
//	    pt := preprocessing.NewPowerTransformer(-1) // estimate lambdas on all cores
//	    XT, err := pt.FitTransform(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("lambdas:", pt.Lambdas())
//	    fmt.Println(mat.Formatted(XT))
//	}
//
// # Packages
//
//   - preprocessing: the Yeo-Johnson power transformer
//   - decomposition: column-selective PCA and truncated SVD
//   - core/model: estimator state machine and transformer interfaces
//   - core/optimize: bracketed scalar minimization (Brent's method)
//   - core/parallel: n_jobs-style worker pools
//   - pkg/errors: structured errors and warnings
//   - pkg/log: structured logging attributes and setup
package skutil
