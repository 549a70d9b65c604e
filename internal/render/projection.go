package render

import "github.com/couchcryptid/precip-maps/internal/domain"

// rect is an axis-aligned pixel rectangle.
type rect struct {
	X, Y, W, H float64
}

func (r rect) centerX() float64 { return r.X + r.W/2 }

// plateCarree maps lon/lat linearly onto a pixel rectangle. One degree of
// longitude and one of latitude get the same pixel length.
type plateCarree struct {
	ext  domain.Extent
	area rect
}

// fitPlateCarree places ext inside avail, centred, preserving aspect.
func fitPlateCarree(ext domain.Extent, avail rect) plateCarree {
	dLon := ext.MaxLon - ext.MinLon
	dLat := ext.MaxLat - ext.MinLat

	scale := avail.W / dLon
	if s := avail.H / dLat; s < scale {
		scale = s
	}
	w, h := dLon*scale, dLat*scale
	return plateCarree{
		ext: ext,
		area: rect{
			X: avail.X + (avail.W-w)/2,
			Y: avail.Y + (avail.H-h)/2,
			W: w,
			H: h,
		},
	}
}

// project returns the pixel position of a coordinate.
func (p plateCarree) project(lon, lat float64) (x, y float64) {
	x = p.area.X + (lon-p.ext.MinLon)/(p.ext.MaxLon-p.ext.MinLon)*p.area.W
	y = p.area.Y + (p.ext.MaxLat-lat)/(p.ext.MaxLat-p.ext.MinLat)*p.area.H
	return x, y
}
