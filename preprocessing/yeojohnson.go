// Package preprocessing はscikit-learn互換のデータ前処理変換器を提供する
package preprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/vedraiyani/skutil/core/model"
	"github.com/vedraiyani/skutil/core/optimize"
	"github.com/vedraiyani/skutil/core/parallel"
	"github.com/vedraiyani/skutil/pkg/errors"
	"github.com/vedraiyani/skutil/pkg/log"
)

// lambdaTol はλの特異点（0および2）判定に用いる絶対許容誤差。
// 分母が0に近づく場合の数値不安定を避けるため、厳密等価ではなく許容誤差で比較する。
const lambdaTol = 1e-12

// transformChunk はTransform/InverseTransformで列の並列処理を行う閾値
const transformChunk = 8

// PowerTransformer はYeo-Johnsonべき変換器
// 各特徴量ごとに形状パラメータλを最尤推定し、分布をガウス分布に近づける変換を行う
type PowerTransformer struct {
	model.BaseEstimator

	// NJobs はλ推定に用いる並列度
	// 1で逐次実行、-1で全CPUコア、-1未満で(NumCPU+1+NJobs)コアを使用する
	NJobs int

	// StrictInverse は逆変換の分岐をλ許容誤差つきの厳密な逆関数に切り替える
	// falseの場合は元実装と互換の分岐（λの厳密等価比較）を用いる
	StrictInverse bool

	// lambdas は学習された特徴量ごとの形状パラメータ
	// Fitでのみ生成され、以後変更されない
	lambdas []float64
}

var (
	_ model.InverseTransformer = (*PowerTransformer)(nil)
	_ model.ParameterGetter    = (*PowerTransformer)(nil)
)

// NewPowerTransformer は新しいPowerTransformerを作成する
//
// パラメータ:
//   - nJobs: λ推定の並列度 (1: 逐次, -1: 全コア)
//
// 使用例:
//
//	pt := preprocessing.NewPowerTransformer(-1)
//	err := pt.Fit(X)
//	XTrans, err := pt.Transform(X)
func NewPowerTransformer(nJobs int) *PowerTransformer {
	return &PowerTransformer{NJobs: nJobs}
}

// NewPowerTransformerDefault はデフォルト設定（逐次実行）でPowerTransformerを作成する
func NewPowerTransformerDefault() *PowerTransformer {
	return NewPowerTransformer(1)
}

// Fit は訓練データから特徴量ごとの形状パラメータλを最尤推定する
//
// 各特徴量は独立に推定されるため、NJobsに応じて並列実行される。
// 各ワーカーは自分の特徴量列の独立したコピーを受け取る。
//
// パラメータ:
//   - X: 訓練データ (n_samples × n_features の行列、n_samples >= 2)
//
// 戻り値:
//   - error: サンプル数不足などの検証エラー、または数値的縮退エラー
func (t *PowerTransformer) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "PowerTransformer.Fit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PowerTransformer.Fit", "empty data", errors.ErrEmptyData)
	}
	if r < 2 {
		return errors.NewValidationError("n_samples", "should be at least two", r)
	}
	// NaNやInfを含む入力では対数尤度が意味を持たないため、推定前に拒否する
	if err := errors.CheckMatrix("PowerTransformer.Fit", X, r, c, 0); err != nil {
		return err
	}

	start := time.Now()

	// 特徴量ごとに独立してλを推定する（共有状態なし、順序依存なし）
	lambdas, err := parallel.MapErr(t.NJobs, c, func(j int) (float64, error) {
		// mat.Colは新しいスライスを返すため、ワーカー間でデータを共有しない
		col := mat.Col(nil, j, X)
		lam, estErr := estimateLambda(col)
		if estErr != nil {
			var instab *errors.NumericalInstabilityError
			if errors.As(estErr, &instab) {
				errors.Warn(errors.NewDegenerateLikelihoodWarning(j, math.NaN(),
					"zero-variance transformed feature"))
			}
			return 0, errors.Wrapf(estErr, "estimating lambda for feature %d", j)
		}
		return lam, nil
	})
	if err != nil {
		t.Reset()
		return err
	}
	// NaNなλを学習済み状態として保持しないための最終確認
	if err := errors.CheckNumericalStability("fitted_lambdas", lambdas, 0); err != nil {
		t.Reset()
		return err
	}

	// 新しいFitは以前のλベクトルを完全に置き換える
	t.lambdas = lambdas
	t.SetFitted()

	slog.Debug("power transformer fitted",
		log.ModelNameKey, "PowerTransformer",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.NJobsKey, t.NJobs,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform は学習済みのλを使って各特徴量にYeo-Johnson変換を適用する
//
// パラメータ:
//   - X: 変換するデータ (特徴量数はFit時と一致していること)
//
// 戻り値:
//   - mat.Matrix: 変換されたデータ (入力と同じ形状)
//   - error: 未学習エラー、または次元不一致エラー
func (t *PowerTransformer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("PowerTransformer", "Transform")
	}

	r, c := X.Dims()
	if c != len(t.lambdas) {
		return nil, errors.NewDimensionError("PowerTransformer.Transform", len(t.lambdas), c, 1)
	}

	result := mat.NewDense(r, c, nil)

	// 各出力列は自分の入力列と学習済みλのみに依存するため、列方向に並列化できる
	parallel.ParallelizeWithThreshold(c, transformChunk, func(startCol, endCol int) {
		for j := startCol; j < endCol; j++ {
			lam := t.lambdas[j]
			for i := 0; i < r; i++ {
				result.Set(i, j, yeoJohnson(X.At(i, j), lam))
			}
		}
	})

	return result, nil
}

// InverseTransform は変換されたデータを元の表現に戻す
//
// 逆変換の分岐は変換後の値の符号に基づき、λは0および2と厳密等価で比較される
// （順変換の許容誤差つき比較とは非対称）。StrictInverseがtrueの場合は
// 許容誤差つき比較と正しい逆関数代数を用いる対称な変種に切り替わる。
//
// パラメータ:
//   - X: 変換されたデータ
//
// 戻り値:
//   - mat.Matrix: 元の表現に戻されたデータ
//   - error: 未学習エラー、または次元不一致エラー
func (t *PowerTransformer) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("PowerTransformer", "InverseTransform")
	}

	r, c := X.Dims()
	if c != len(t.lambdas) {
		return nil, errors.NewDimensionError("PowerTransformer.InverseTransform", len(t.lambdas), c, 1)
	}

	inv := yeoJohnsonInverse
	if t.StrictInverse {
		inv = yeoJohnsonInverseStrict
	}

	result := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(c, transformChunk, func(startCol, endCol int) {
		for j := startCol; j < endCol; j++ {
			lam := t.lambdas[j]
			for i := 0; i < r; i++ {
				result.Set(i, j, inv(X.At(i, j), lam))
			}
		}
	})

	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (t *PowerTransformer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := t.Fit(X); err != nil {
		return nil, err
	}
	return t.Transform(X)
}

// Lambdas は学習された形状パラメータのコピーを返す
//
// 戻り値はコピーであり、変更しても学習済み状態には影響しない。
// 未学習の場合はnilを返す。
func (t *PowerTransformer) Lambdas() []float64 {
	if !t.IsFitted() {
		return nil
	}
	out := make([]float64, len(t.lambdas))
	copy(out, t.lambdas)
	return out
}

// GetParams は変換器のパラメータを取得する
func (t *PowerTransformer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_jobs":         t.NJobs,
		"strict_inverse": t.StrictInverse,
	}
}

// String は変換器の文字列表現を返す
func (t *PowerTransformer) String() string {
	if !t.IsFitted() {
		return fmt.Sprintf("PowerTransformer(n_jobs=%d)", t.NJobs)
	}
	return fmt.Sprintf("PowerTransformer(n_jobs=%d, n_features=%d)", t.NJobs, len(t.lambdas))
}

// ===========================================================================
//
//	変換プリミティブ
//
// ===========================================================================

// yeoJohnson は1つの観測値にYeo-Johnson順変換を適用する
//
// 4分岐の区分規則:
//   - x >= 0, λ != 0: ((x+1)^λ − 1) / λ
//   - x >= 0, λ == 0: ln(x+1)
//   - x <  0, λ != 2: −(((1−x)^(2−λ)) − 1) / (2−λ)
//   - x <  0, λ == 2: −ln(1−x)
//
// λの0および2との比較はlambdaTolの絶対許容誤差を用いる。入力の検証は行わない。
func yeoJohnson(x, lam float64) float64 {
	if x >= 0 {
		if math.Abs(lam) > lambdaTol {
			return (math.Pow(x+1, lam) - 1.0) / lam
		}
		return math.Log1p(x)
	}
	if math.Abs(lam-2.0) > lambdaTol {
		denom := 2.0 - lam
		numer := math.Pow(1.0-x, 2.0-lam) - 1.0
		return -numer / denom
	}
	return -math.Log1p(-x)
}

// yeoJohnsonInverse は変換された値yから元の観測値を復元する
//
// 分岐は復元される値ではなくyの符号で選択され、λは厳密等価で比較される。
// このため境界近傍では順変換の厳密な逆にはならない（元実装互換の挙動）。
func yeoJohnsonInverse(y, lam float64) float64 {
	if lam != 0 && y >= 0 {
		return math.Pow(y*lam+1.0, 1.0/lam) - 1.0
	}
	if lam == 0 && y >= 0 {
		return math.Expm1(y)
	}
	if lam != 2 && y < 0 {
		nmr := -(y * (2.0 - lam)) + 1.0
		return -math.Pow(nmr, 1.0/(2.0-lam)) - 1.0
	}
	return -math.Expm1(-y)
}

// yeoJohnsonInverseStrict はyeoJohnsonの代数的に正しい逆変換
//
// 順変換と同じlambdaTol許容誤差でλを比較する。順変換は符号を保存する
// 単調増加関数なので、yの符号での分岐は復元値の符号での分岐と一致する。
func yeoJohnsonInverseStrict(y, lam float64) float64 {
	if y >= 0 {
		if math.Abs(lam) > lambdaTol {
			return math.Pow(y*lam+1.0, 1.0/lam) - 1.0
		}
		return math.Expm1(y)
	}
	if math.Abs(lam-2.0) > lambdaTol {
		nmr := -(y * (2.0 - lam)) + 1.0
		return 1.0 - math.Pow(nmr, 1.0/(2.0-lam))
	}
	return -math.Expm1(-y)
}

// ===========================================================================
//
//	対数尤度と推定器
//
// ===========================================================================

// yeoJohnsonLogLik は候補λに対する標本ベクトルの対数尤度を計算する
//
// 対数尤度はln(元の値)を必要とするが、元の値や変換後の値は0以下になりうる。
// そのため最小値がlambdaTolを下回る場合、元のベクトルと変換後のベクトルを
// それぞれ独立に|min|+1だけシフトする。シフトはこの評価に局所的であり、
// 呼び出し側のデータを変更しない。
//
// 変換後の分散が厳密に0の場合はNaNを返す（このλを最適値として選ばないための信号）。
// 空の標本に対してはエラーを返す。
func yeoJohnsonLogLik(data []float64, lam float64) (float64, error) {
	n := len(data)
	if n == 0 {
		return 0, errors.NewValueError("yeoJohnsonLogLik", "data is empty")
	}

	y := make([]float64, n)
	for i, x := range data {
		y[i] = yeoJohnson(x, lam)
	}

	minD := floats.Min(data)
	minY := floats.Min(y)

	// 対数を取るためのシフト。元データは呼び出し側所有のためコピーする
	shifted := data
	if minD < lambdaTol {
		shift := math.Abs(minD) + 1.0
		shifted = make([]float64, n)
		for i, x := range data {
			shifted[i] = x + shift
		}
	}
	if minY < lambdaTol {
		shift := math.Abs(minY) + 1.0
		for i := range y {
			y[i] += shift
		}
	}

	// 母分散（N除算）を用いる
	variance := stat.PopVariance(y, nil)
	if variance == 0 {
		return math.NaN(), nil
	}

	sumLog := 0.0
	for _, x := range shifted {
		sumLog += math.Log(x)
	}

	llf := (lam-1.0)*sumLog - float64(n)/2.0*math.Log(variance)
	return llf, nil
}

// fallbackLambda は探索が有限な最小値に到達しなかった場合に用いるλ。
// λ=1は恒等に近い変換であり、逆変換が厳密に成立する。
const fallbackLambda = 1.0

// estimateLambda は1つの特徴量ベクトルに対する最適なλを最尤推定する
//
// 負の対数尤度をBrent法で最小化する。探索の初期区間は[−2, 2]だが、
// 最適化器はこの区間の外側も評価しうる。
//
// データによっては対数尤度がλ→−∞で非有界になり、探索が進むにつれて
// 変換後の列が浮動小数点上で定数に縮退して目的関数がNaNになる。
// 探索中に有限な評価が一度でもあった場合はfallbackLambdaに退避する。
// 全ての候補λで対数尤度がNaNに縮退した場合（定数列など、入力自体が
// 縮退している場合）のみ数値的縮退エラーを返す。
func estimateLambda(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, errors.NewValueError("estimateLambda", "data is empty")
	}

	sawFinite := false
	objective := func(lam float64) float64 {
		llf, _ := yeoJohnsonLogLik(data, lam)
		obj := -llf
		if !math.IsNaN(obj) {
			sawFinite = true
		}
		return obj
	}

	lam, fmin, err := optimize.Brent(objective, -2, 2)
	if err != nil {
		return 0, err
	}
	if chkErr := errors.CheckScalar("lambda_search", fmin, 0); chkErr != nil {
		if !sawFinite {
			return 0, chkErr
		}
		return fallbackLambda, nil
	}
	return lam, nil
}
