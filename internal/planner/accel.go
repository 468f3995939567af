package planner

import (
	"github.com/grefstad/shrinkfit/internal/config"
	"github.com/grefstad/shrinkfit/internal/probe"
)

// Software tonemap pipeline for HDR10/HLG → SDR in pure CPU mode. Higher
// quality than the hardware tonemappers; runs at native resolution before
// any scaling so color mapping and scaling artifacts don't compound.
const swTonemapChain = "zscale=t=linear:npl=100,format=gbrpf32le,zscale=p=bt709," +
	"tonemap=tonemap=hable:desat=0," +
	"zscale=t=bt709:m=bt709:r=tv,format=yuv420p"

// maxHeight is the downscale target: sources taller than this get an
// aspect-preserving scale to 1080 lines.
const maxHeight = 1080

// backendPolicy carries the per-accelerator filter vocabulary. The three
// hardware backends share a shape and differ only in flag/filter names, so
// a single table replaces per-backend branching.
type backendPolicy struct {
	decodeFlags []string
	tonemapExpr string
	scaleExpr   string
	onSurface   bool // decode leaves frames on an accelerator surface
}

func policyFor(accel config.AcceleratorClass, vaapiDevice string) backendPolicy {
	switch accel {
	case config.AccelIntel:
		return backendPolicy{
			decodeFlags: []string{"-hwaccel", "qsv", "-hwaccel_output_format", "qsv"},
			tonemapExpr: "vpp_qsv=tonemap=1:format=nv12",
			scaleExpr:   "scale_qsv=w=-1:h=1080",
			onSurface:   true,
		}
	case config.AccelAMD:
		return backendPolicy{
			decodeFlags: []string{
				"-hwaccel", "vaapi",
				"-hwaccel_device", vaapiDevice,
				"-hwaccel_output_format", "vaapi",
			},
			tonemapExpr: "tonemap_vaapi=format=nv12:t=bt709:m=bt709:p=bt709",
			scaleExpr:   "scale_vaapi=w=-2:h=1080",
			onSurface:   true,
		}
	case config.AccelNvidia:
		return backendPolicy{
			decodeFlags: []string{"-hwaccel", "cuda", "-hwaccel_output_format", "cuda"},
			tonemapExpr: "tonemap_cuda=tonemap=hable:format=nv12",
			scaleExpr:   "scale_cuda=w=-2:h=1080",
			onSurface:   true,
		}
	default: // config.AccelNone
		return backendPolicy{
			tonemapExpr: swTonemapChain,
			scaleExpr:   "scale=-2:1080",
		}
	}
}

// BuildAccelPlan produces the ordered decode-flag/filter plan for a source.
// Pure function: identical inputs always yield an identical, order-stable
// plan.
//
// Stage order is fixed: tonemap (HDR sources only, at native resolution),
// then downscale (sources above 1080 lines), then — for hardware backends,
// whose decode keeps frames on an accelerator surface — a final transfer to
// system memory normalized to an 8-bit format, because the x264 encode runs
// on the CPU regardless of where decode and filtering happened.
//
// An unknown color transfer is treated as SDR: a probe gap on that one
// field disables tonemapping but never blocks the file.
func BuildAccelPlan(accel config.AcceleratorClass, vaapiDevice string, sourceHeight int, transfer probe.ColorTransfer) AccelPlan {
	p := policyFor(accel, vaapiDevice)

	plan := AccelPlan{DecodeFlags: p.decodeFlags}

	if transfer.IsHDR() {
		plan.Filters = append(plan.Filters, FilterStage{Kind: StageTonemap, Expr: p.tonemapExpr})
	}
	if sourceHeight > maxHeight {
		plan.Filters = append(plan.Filters, FilterStage{Kind: StageScale, Expr: p.scaleExpr})
	}
	if p.onSurface {
		plan.Filters = append(plan.Filters, FilterStage{Kind: StageDownload, Expr: "hwdownload,format=nv12"})
	}

	return plan
}
