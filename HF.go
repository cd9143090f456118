// HF.go --  This file is part of goHF project.
// Mirzaeva Irina, 2023
//
//	goHF is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package main

// Gaussian integrals after McMurchie and Davidson, see
// T. Helgaker, P. Jorgensen, J. Olsen, Molecular Electronic-Structure Theory, ch. 9.

import (
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mathext"

	"github.com/mirzaevaiv/gohf/tensor"
)

func init() {
	registerEngine("gaussian", func(procs int) AOEngine { return &gaussEngine{procs: procs} })
}

// Shell is a contracted Cartesian Gaussian shell. Coefs already carry the
// radial normalization of each primitive and of the contraction.
type Shell struct {
	Atom   int
	L      int
	Center [3]float64
	Exps   []float64
	Coefs  []float64
}

func (s *Shell) NFuncs() int {
	return (s.L + 1) * (s.L + 2) / 2
}

// cartesian lists the components of angular momentum l as xx, xy, xz, yy ...
func cartesian(l int) [][3]int {
	var res [][3]int
	for lx := l; lx >= 0; lx-- {
		for ly := l - lx; ly >= 0; ly-- {
			res = append(res, [3]int{lx, ly, l - lx - ly})
		}
	}
	return res
}

func doubleFactorial(n int) float64 {
	res := 1.0
	for ; n > 1; n -= 2 {
		res *= float64(n)
	}
	return res
}

func angularNorm(lmn [3]int) float64 {
	return 1.0 / math.Sqrt(doubleFactorial(2*lmn[0]-1)*doubleFactorial(2*lmn[1]-1)*doubleFactorial(2*lmn[2]-1))
}

func newShell(atom int, center [3]float64, orb Orbital) Shell {
	sh := Shell{Atom: atom, L: orb.l, Center: center}
	for _, pg := range orb.Funcs {
		sh.Exps = append(sh.Exps, pg.zeta)
		norm := math.Pow(2*pg.zeta/math.Pi, 0.75) * math.Pow(4*pg.zeta, float64(orb.l)/2)
		sh.Coefs = append(sh.Coefs, pg.preExp*norm)
	}
	self := 0.0
	for i, a := range sh.Exps {
		for j, b := range sh.Exps {
			p := a + b
			self += sh.Coefs[i] * sh.Coefs[j] * math.Pow(math.Pi/p, 1.5) / math.Pow(2*p, float64(sh.L))
		}
	}
	scale := 1.0 / math.Sqrt(self)
	for i := range sh.Coefs {
		sh.Coefs[i] *= scale
	}
	return sh
}

// boys is F_n(x) through the regularized lower incomplete gamma function.
func boys(x float64, n int) float64 {
	nf := float64(n)
	if x == 0 {
		return 1.0 / (2.0*nf + 1)
	}
	return mathext.GammaIncReg(nf+0.5, x) * math.Gamma(nf+0.5) * (1.0 / (2.0 * math.Pow(x, nf+0.5)))
}

// boysArray returns F_0..F_nmax, the lower orders by downward recursion.
func boysArray(nmax int, x float64) []float64 {
	f := make([]float64, nmax+1)
	if x < 1e-12 {
		for n := range f {
			f[n] = 1.0/float64(2*n+1) - x/float64(2*n+3)
		}
		return f
	}
	f[nmax] = boys(x, nmax)
	ex := math.Exp(-x)
	for n := nmax - 1; n >= 0; n-- {
		f[n] = (2*x*f[n+1] + ex) / float64(2*n+1)
	}
	return f
}

// hermiteE tabulates the expansion coefficients E[i][j][t] of the overlap
// distribution of two 1D Gaussians with exponents a, b, separation qx = A-B.
func hermiteE(la, lb int, a, b, qx float64) [][][]float64 {
	p := a + b
	xpa := -b / p * qx
	xpb := a / p * qx
	E := make([][][]float64, la+1)
	for i := range E {
		E[i] = make([][]float64, lb+1)
		for j := range E[i] {
			E[i][j] = make([]float64, i+j+1)
		}
	}
	E[0][0][0] = math.Exp(-a * b / p * qx * qx)
	for i := 0; i <= la; i++ {
		for j := 0; j <= lb; j++ {
			if i == 0 && j == 0 {
				continue
			}
			var src []float64
			x := xpa
			if i > 0 {
				src = E[i-1][j]
			} else {
				src = E[i][j-1]
				x = xpb
			}
			for t := 0; t <= i+j; t++ {
				val := 0.0
				if t > 0 {
					val += src[t-1] / (2 * p)
				}
				if t < len(src) {
					val += x * src[t]
				}
				if t+1 < len(src) {
					val += float64(t+1) * src[t+1]
				}
				E[i][j][t] = val
			}
		}
	}
	return E
}

// hermiteR returns the Hermite Coulomb integrals R^0_tuv for t+u+v <= lmax,
// stored at (t*(lmax+1)+u)*(lmax+1)+v.
func hermiteR(lmax int, alpha float64, pc [3]float64) []float64 {
	n1 := lmax + 1
	idx := func(t, u, v int) int { return (t*n1+u)*n1 + v }
	x := alpha * (pc[0]*pc[0] + pc[1]*pc[1] + pc[2]*pc[2])
	fn := boysArray(lmax, x)
	cur := make([]float64, n1*n1*n1)
	prev := make([]float64, n1*n1*n1)
	for n := lmax; n >= 0; n-- {
		cur[0] = math.Pow(-2*alpha, float64(n)) * fn[n]
		for t := 0; t <= lmax-n; t++ {
			for u := 0; u <= lmax-n-t; u++ {
				for v := 0; v <= lmax-n-t-u; v++ {
					if t+u+v == 0 {
						continue
					}
					var val float64
					switch {
					case t > 0:
						val = pc[0] * prev[idx(t-1, u, v)]
						if t > 1 {
							val += float64(t-1) * prev[idx(t-2, u, v)]
						}
					case u > 0:
						val = pc[1] * prev[idx(t, u-1, v)]
						if u > 1 {
							val += float64(u-1) * prev[idx(t, u-2, v)]
						}
					default:
						val = pc[2] * prev[idx(t, u, v-1)]
						if v > 1 {
							val += float64(v-1) * prev[idx(t, u, v-2)]
						}
					}
					cur[idx(t, u, v)] = val
				}
			}
		}
		prev, cur = cur, prev
	}
	return prev
}

type primPair struct {
	p, coef float64
	P       [3]float64
	E       [3][][][]float64
}

// shellPair holds the primitive products of two shells. extra raises the
// angular momentum tabulated on the second shell (kinetic energy needs +2).
type shellPair struct {
	a, b  *Shell
	prims []primPair
}

func newShellPair(a, b *Shell, extra int) shellPair {
	sp := shellPair{a: a, b: b}
	for i, ea := range a.Exps {
		for j, eb := range b.Exps {
			p := ea + eb
			pp := primPair{p: p, coef: a.Coefs[i] * b.Coefs[j]}
			for d := 0; d < 3; d++ {
				pp.P[d] = (ea*a.Center[d] + eb*b.Center[d]) / p
				pp.E[d] = hermiteE(a.L, b.L+extra, ea, eb, a.Center[d]-b.Center[d])
			}
			sp.prims = append(sp.prims, pp)
		}
	}
	return sp
}

type gaussEngine struct {
	procs int
}

func shellOffsets(shells []Shell) ([]int, int) {
	offs := make([]int, len(shells))
	n := 0
	for i := range shells {
		offs[i] = n
		n += shells[i].NFuncs()
	}
	return offs, n
}

func (e *gaussEngine) OneElectron(kind IntegralKind, mol *Molecule) (*tensor.Dense, error) {
	shells := mol.Shells()
	offs, nbf := shellOffsets(shells)
	res := tensor.Zeros(nbf, nbf)
	for i := range shells {
		for j := 0; j <= i; j++ {
			extra := 0
			if kind == KineticInt {
				extra = 2
			}
			sp := newShellPair(&shells[i], &shells[j], extra)
			var block [][]float64
			switch kind {
			case OverlapInt:
				block = sp.overlap()
			case KineticInt:
				block = sp.kinetic()
			case PotentialInt:
				block = sp.potential(mol)
			}
			for a, row := range block {
				for b, v := range row {
					res.Set(v, offs[i]+a, offs[j]+b)
					res.Set(v, offs[j]+b, offs[i]+a)
				}
			}
		}
	}
	return res, nil
}

func (sp *shellPair) overlap() [][]float64 {
	ca, cb := cartesian(sp.a.L), cartesian(sp.b.L)
	res := newBlock(len(ca), len(cb))
	for _, pp := range sp.prims {
		pref := pp.coef * math.Pow(math.Pi/pp.p, 1.5)
		for x, la := range ca {
			for y, lb := range cb {
				res[x][y] += pref * pp.E[0][la[0]][lb[0]][0] * pp.E[1][la[1]][lb[1]][0] * pp.E[2][la[2]][lb[2]][0]
			}
		}
	}
	normalizeBlock(res, ca, cb)
	return res
}

func (sp *shellPair) kinetic() [][]float64 {
	ca, cb := cartesian(sp.a.L), cartesian(sp.b.L)
	res := newBlock(len(ca), len(cb))
	for k, pp := range sp.prims {
		b := sp.b.Exps[k%len(sp.b.Exps)]
		pref := pp.coef * math.Pow(math.Pi/pp.p, 1.5)
		for x, la := range ca {
			for y, lb := range cb {
				var s, t [3]float64
				for d := 0; d < 3; d++ {
					i, j := la[d], lb[d]
					E := pp.E[d][i]
					s[d] = E[j][0]
					t[d] = -2*b*b*E[j+2][0] + b*float64(2*j+1)*E[j][0]
					if j > 1 {
						t[d] -= 0.5 * float64(j*(j-1)) * E[j-2][0]
					}
				}
				res[x][y] += pref * (t[0]*s[1]*s[2] + s[0]*t[1]*s[2] + s[0]*s[1]*t[2])
			}
		}
	}
	normalizeBlock(res, ca, cb)
	return res
}

func (sp *shellPair) potential(mol *Molecule) [][]float64 {
	ca, cb := cartesian(sp.a.L), cartesian(sp.b.L)
	res := newBlock(len(ca), len(cb))
	lmax := sp.a.L + sp.b.L
	n1 := lmax + 1
	for _, pp := range sp.prims {
		for _, atm := range mol.Atoms {
			if atm.Z == 0 {
				continue
			}
			pc := [3]float64{pp.P[0] - atm.Coords[0], pp.P[1] - atm.Coords[1], pp.P[2] - atm.Coords[2]}
			R := hermiteR(lmax, pp.p, pc)
			pref := -float64(atm.Z) * 2 * math.Pi / pp.p * pp.coef
			for x, la := range ca {
				for y, lb := range cb {
					ex, ey, ez := pp.E[0][la[0]][lb[0]], pp.E[1][la[1]][lb[1]], pp.E[2][la[2]][lb[2]]
					val := 0.0
					for t := range ex {
						for u := range ey {
							for v := range ez {
								val += ex[t] * ey[u] * ez[v] * R[(t*n1+u)*n1+v]
							}
						}
					}
					res[x][y] += pref * val
				}
			}
		}
	}
	normalizeBlock(res, ca, cb)
	return res
}

func newBlock(n, m int) [][]float64 {
	res := make([][]float64, n)
	for i := range res {
		res[i] = make([]float64, m)
	}
	return res
}

func normalizeBlock(block [][]float64, ca, cb [][3]int) {
	for x := range block {
		for y := range block[x] {
			block[x][y] *= angularNorm(ca[x]) * angularNorm(cb[y])
		}
	}
}

// ERI builds the full (mn|ls) tensor from the unique shell quartets.
func (e *gaussEngine) ERI(mol *Molecule) (*tensor.Dense, error) {
	shells := mol.Shells()
	offs, nbf := shellOffsets(shells)
	ns := len(shells)
	pairs := make([][]shellPair, ns)
	for i := range shells {
		pairs[i] = make([]shellPair, i+1)
		for j := 0; j <= i; j++ {
			pairs[i][j] = newShellPair(&shells[i], &shells[j], 0)
		}
	}
	res := tensor.Zeros(nbf, nbf, nbf, nbf)

	var g errgroup.Group
	if e.procs > 0 {
		g.SetLimit(e.procs)
	}
	for i := 0; i < ns; i++ {
		g.Go(func() error {
			for j := 0; j <= i; j++ {
				ij := i*(i+1)/2 + j
				for k := 0; k <= i; k++ {
					for l := 0; l <= k; l++ {
						if k*(k+1)/2+l > ij {
							break
						}
						block := quartet(&pairs[i][j], &pairs[k][l])
						scatterQuartet(res, block, [4]int{offs[i], offs[j], offs[k], offs[l]})
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// quartet returns (ab|cd) for all Cartesian components, flattened a,b,c,d.
func quartet(ab, cd *shellPair) *tensor.Dense {
	ca, cb := cartesian(ab.a.L), cartesian(ab.b.L)
	cc, cdd := cartesian(cd.a.L), cartesian(cd.b.L)
	res := tensor.Zeros(len(ca), len(cb), len(cc), len(cdd))
	lab := ab.a.L + ab.b.L
	lcd := cd.a.L + cd.b.L
	lmax := lab + lcd
	n1 := lmax + 1
	m1 := lab + 1
	w := make([]float64, m1*m1*m1)
	for _, p1 := range ab.prims {
		for _, p2 := range cd.prims {
			alpha := p1.p * p2.p / (p1.p + p2.p)
			pq := [3]float64{p1.P[0] - p2.P[0], p1.P[1] - p2.P[1], p1.P[2] - p2.P[2]}
			R := hermiteR(lmax, alpha, pq)
			pref := 2 * math.Pow(math.Pi, 2.5) / (p1.p * p2.p * math.Sqrt(p1.p+p2.p)) * p1.coef * p2.coef
			for z, lc := range cc {
				for y, ld := range cdd {
					fx, fy, fz := p2.E[0][lc[0]][ld[0]], p2.E[1][lc[1]][ld[1]], p2.E[2][lc[2]][ld[2]]
					for t := 0; t <= lab; t++ {
						for u := 0; u <= lab-t; u++ {
							for v := 0; v <= lab-t-u; v++ {
								val := 0.0
								for tau := range fx {
									for nu := range fy {
										for phi := range fz {
											sign := 1.0
											if (tau+nu+phi)%2 == 1 {
												sign = -1.0
											}
											val += sign * fx[tau] * fy[nu] * fz[phi] * R[((t+tau)*n1+u+nu)*n1+v+phi]
										}
									}
								}
								w[(t*m1+u)*m1+v] = val
							}
						}
					}
					for x, la := range ca {
						for q, lb := range cb {
							ex, ey, ez := p1.E[0][la[0]][lb[0]], p1.E[1][la[1]][lb[1]], p1.E[2][la[2]][lb[2]]
							val := 0.0
							for t := range ex {
								for u := range ey {
									for v := range ez {
										val += ex[t] * ey[u] * ez[v] * w[(t*m1+u)*m1+v]
									}
								}
							}
							res.Set(res.At(x, q, z, y)+pref*val, x, q, z, y)
						}
					}
				}
			}
		}
	}
	for x, la := range ca {
		for q, lb := range cb {
			for z, lc := range cc {
				for y, ld := range cdd {
					n := angularNorm(la) * angularNorm(lb) * angularNorm(lc) * angularNorm(ld)
					res.Set(res.At(x, q, z, y)*n, x, q, z, y)
				}
			}
		}
	}
	return res
}

func scatterQuartet(res, block *tensor.Dense, off [4]int) {
	sh := block.Shape()
	for a := 0; a < sh[0]; a++ {
		for b := 0; b < sh[1]; b++ {
			for c := 0; c < sh[2]; c++ {
				for d := 0; d < sh[3]; d++ {
					v := block.At(a, b, c, d)
					m, n, l, s := off[0]+a, off[1]+b, off[2]+c, off[3]+d
					res.Set(v, m, n, l, s)
					res.Set(v, n, m, l, s)
					res.Set(v, m, n, s, l)
					res.Set(v, n, m, s, l)
					res.Set(v, l, s, m, n)
					res.Set(v, s, l, m, n)
					res.Set(v, l, s, n, m)
					res.Set(v, s, l, n, m)
				}
			}
		}
	}
}
