package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := NewCache()
	c.Set("foo", 123, 0, nil)
	v, ok := c.Get("foo")
	if !ok || v != 123 {
		t.Errorf("Get(foo) = %v, %v; want 123, true", v, ok)
	}
}

func TestGetMissing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nope"); ok {
		t.Error("Get on missing key returned ok")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewCache()
	c.Set("short", "v", 1, nil)
	if _, ok := c.Get("short"); !ok {
		t.Fatal("value expired too early")
	}
	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("value not expired after TTL")
	}
}

func TestCompositeKeys(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"orders", "open"}, "payload", 0, nil)
	v, ok := c.GetN("orders", "open")
	if !ok || v != "payload" {
		t.Errorf("GetN = %v, %v; want payload, true", v, ok)
	}
}

func TestDeleteByTag(t *testing.T) {
	c := NewCache()
	c.Set("stores:list", []string{"a"}, 0, []string{"stores"})
	c.Set("stores:byid:1", "a", 0, []string{"stores"})
	c.Set("colors:list", []string{"red"}, 0, []string{"colors"})

	c.DeleteByTag("stores")

	if _, ok := c.Get("stores:list"); ok {
		t.Error("stores:list survived DeleteByTag")
	}
	if _, ok := c.Get("stores:byid:1"); ok {
		t.Error("stores:byid:1 survived DeleteByTag")
	}
	if _, ok := c.Get("colors:list"); !ok {
		t.Error("colors:list wrongly invalidated")
	}
}
