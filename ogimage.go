package bedrock

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/webp"

	"github.com/eringen/bedrock/content"
)

const (
	ogWidth      = 1200
	ogHeight     = 630
	ogQuality    = 80
	maxMediaSize = 20 << 20
)

// handleOGImage serves a 1200x630 JPEG cropped from the post's image for
// social previews. Posts without an image redirect to the placeholder.
func (a *App) handleOGImage(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, c.Param("slug"))
	if err != nil {
		return err
	}

	src := content.ResolveImageURL(post)
	if src == content.PlaceholderImage {
		return c.Redirect(http.StatusFound, content.PlaceholderImage)
	}

	body, _, err := a.CMS.FetchMedia(ctx, src)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.Logger().Warnf("og image %s: fetch %s: %v", post.Slug, src, err)
		}
		return c.Redirect(http.StatusFound, content.PlaceholderImage)
	}
	defer body.Close()

	img, err := imaging.Decode(io.LimitReader(body, maxMediaSize), imaging.AutoOrientation(true))
	if err != nil {
		c.Logger().Warnf("og image %s: decode %s: %v", post.Slug, src, err)
		return c.Redirect(http.StatusFound, content.PlaceholderImage)
	}

	var buf bytes.Buffer
	thumb := imaging.Fill(img, ogWidth, ogHeight, imaging.Center, imaging.Lanczos)
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(ogQuality)); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", buf.Bytes())
}
