package unifi

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// VersionUndetected is reported when sysinfo could not be read.
const VersionUndetected = "undetected"

// Sites returns the sites visible to the logged-in user, sorted by description.
func (c *Client) Sites(ctx context.Context) ([]Site, error) {
	var sites []Site
	if err := c.DoInto(ctx, ListSites(), &sites); err != nil {
		return nil, err
	}
	SortSites(sites)
	return sites, nil
}

// SortSites orders sites by description, case-insensitively.
func SortSites(sites []Site) {
	sort.SliceStable(sites, func(i, j int) bool {
		return strings.ToLower(sites[i].Desc) < strings.ToLower(sites[j].Desc)
	})
}

// DetectVersion reads the controller version from stat/sysinfo.
// Any failure yields VersionUndetected.
func (c *Client) DetectVersion(ctx context.Context) string {
	var info []Sysinfo
	if err := c.DoInto(ctx, StatSysinfo(), &info); err != nil || len(info) == 0 || info[0].Version == "" {
		return VersionUndetected
	}
	return info[0].Version
}

// Vouchers lists the vouchers of the current site.
func (c *Client) Vouchers(ctx context.Context) ([]Voucher, error) {
	var vouchers []Voucher
	if err := c.DoInto(ctx, StatVouchers(), &vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}

// CreateVouchers issues a create-voucher command and returns the vouchers it
// produced, looked up by the create_time the controller reports back.
func (c *Client) CreateVouchers(ctx context.Context, spec VoucherSpec) ([]Voucher, error) {
	var created []struct {
		CreateTime int64 `json:"create_time"`
	}
	if err := c.DoInto(ctx, CreateVoucher(spec), &created); err != nil {
		return nil, err
	}
	if len(created) == 0 || created[0].CreateTime == 0 {
		return nil, fmt.Errorf("%w: create-voucher returned no create_time", ErrRequestFailed)
	}

	var vouchers []Voucher
	if err := c.DoInto(ctx, StatVouchersCreatedAt(created[0].CreateTime), &vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}

// RevokeVoucher deletes the voucher with the given id.
func (c *Client) RevokeVoucher(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: voucher id is empty", ErrRequestFailed)
	}
	_, err := c.Do(ctx, RevokeVoucher(id))
	return err
}
